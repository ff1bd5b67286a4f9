package seed

import (
	"context"
	"fmt"

	"helplink/internal/engine"
	"helplink/pkg/types"
)

// SeedRegions syncs the store with the region definitions below.
// This file is the source of truth for seeded regions:
// - Inserts regions that don't exist
// - Updates existing regions whose fields changed
// - Deletes regions absent from this list, skipping any a need still
//   references
//
// To generate new IDs: `go run ./cmd/helplink nanoid`
func SeedRegions(ctx context.Context, store engine.RegionStore) error {
	regions := []types.Region{
		{
			ID:       "fKz2Yw8mQhT4RbN6cVd1XsE9pLa3GuJ0",
			Province: "北京市",
			City:     "北京市",
			Name:     "朝阳区",
			FullName: "北京市-北京市-朝阳区",
		},
		{
			ID:       "Ht5WqLc8vXnB2mKd7RfYs4Ze1PgA9jU3",
			Province: "北京市",
			City:     "北京市",
			Name:     "海淀区",
			FullName: "北京市-北京市-海淀区",
		},
		{
			ID:       "Vp9XcEw3LqJ6tMhN1bZf5RdK8sYa2uG7",
			Province: "上海市",
			City:     "上海市",
			Name:     "浦东新区",
			FullName: "上海市-上海市-浦东新区",
		},
		{
			ID:       "Qj4TmRw7ZnC1vKsX8dLf2YbE6pHa9gU5",
			Province: "上海市",
			City:     "上海市",
			Name:     "徐汇区",
			FullName: "上海市-上海市-徐汇区",
		},
		{
			ID:       "Bz8MkXw1VqT5nLcR3fJd9YsE2hPa7uG4",
			Province: "广东省",
			City:     "广州市",
			Name:     "天河区",
			FullName: "广东省-广州市-天河区",
		},
		{
			ID:       "Ns6PvLw9XqK2mJcT4dRf7YbZ1hEa5uG8",
			Province: "广东省",
			City:     "深圳市",
			Name:     "南山区",
			FullName: "广东省-深圳市-南山区",
		},
		{
			ID:       "Wd3JmKw6VqX9nPcL1fTr5YsB8hZa2uE7",
			Province: "浙江省",
			City:     "杭州市",
			Name:     "西湖区",
			FullName: "浙江省-杭州市-西湖区",
		},
		{
			ID:       "Gk7RnXw2LqM5vJcP8dKf1YtE4hBa9uZ6",
			Province: "江苏省",
			City:     "南京市",
			Name:     "鼓楼区",
			FullName: "江苏省-南京市-鼓楼区",
		},
		{
			ID:       "Ym1TvPw4XqJ8nLcK6fRd3ZsB7hEa5uG2",
			Province: "四川省",
			City:     "成都市",
			Name:     "武侯区",
			FullName: "四川省-成都市-武侯区",
		},
		{
			ID:       "Cf5LmJw8VqT2nXcR7dPk4YbE9hZa1uG6",
			Province: "湖北省",
			City:     "武汉市",
			Name:     "武昌区",
			FullName: "湖北省-武汉市-武昌区",
		},
	}

	fmt.Println("Starting region sync...")
	fmt.Printf("  Seed file contains %d regions\n", len(regions))

	seedIDs := make(map[string]bool)
	for _, region := range regions {
		seedIDs[region.ID] = true
	}

	existing, _, err := store.List(ctx, types.RegionQuery{
		PageQuery: types.PageQuery{Page: 1, PageSize: 100},
	})
	if err != nil {
		return fmt.Errorf("failed to fetch existing regions: %w", err)
	}
	fmt.Printf("  Store contains %d regions\n", len(existing))

	deletedCount := 0
	for _, existingRegion := range existing {
		if seedIDs[existingRegion.ID] {
			continue
		}

		fmt.Printf("  Deleting region: %s (id: %s)\n", existingRegion.FullName, existingRegion.ID)
		err := store.Delete(ctx, existingRegion.ID)
		if types.IsConflict(err) {
			fmt.Printf("  Skipping delete, needs still reference region %s\n", existingRegion.ID)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to delete region %s: %w", existingRegion.ID, err)
		}
		deletedCount++
	}

	upsertedCount := 0
	for i := range regions {
		region := regions[i]
		fmt.Printf("  Upserting region: %s\n", region.FullName)

		_, err := store.Region(ctx, region.ID)
		switch {
		case types.IsNotFound(err):
			err = store.Create(ctx, &region)
		case err == nil:
			err = store.Update(ctx, &region)
		}
		if err != nil {
			return fmt.Errorf("failed to upsert region %s: %w", region.ID, err)
		}
		upsertedCount++
	}

	fmt.Printf("\nSync complete: %d upserted, %d deleted\n", upsertedCount, deletedCount)
	return nil
}
