package seed

import (
	"context"
	"fmt"

	"helplink/internal/engine"
	"helplink/internal/utils"
	"helplink/pkg/types"
)

// SeedUsers upserts the platform administrator plus a pair of demo accounts.
// IDs must match the subjects issued by the identity provider so the session
// middleware lands on these records.
func SeedUsers(ctx context.Context, store engine.UserStore) error {
	users := []types.User{
		{
			ID:       "aQm3VxKw7RnT1pLcJ8dZf5YsB2hEg9u6",
			Username: "admin",
			FullName: utils.StringPtr("平台管理员"),
			UserType: types.UserTypeAdmin,
		},
		{
			ID:       "eRt6NxJw2VqK9mPcL4dSf8YbZ1hAg5u3",
			Username: "demo_owner",
			FullName: utils.StringPtr("张大爷"),
			Phone:    utils.StringPtr("13800000001"),
			UserType: types.UserTypeNormal,
		},
		{
			ID:       "iWy9LxPw5VqM2nJcT7dKf3YsE6hBg1u8",
			Username: "demo_helper",
			FullName: utils.StringPtr("李阿姨"),
			Phone:    utils.StringPtr("13800000002"),
			UserType: types.UserTypeNormal,
		},
	}

	for i := range users {
		user := users[i]
		fmt.Printf("  Upserting user: %s (%s)\n", user.Username, user.UserType)
		if err := store.UpsertIdentity(ctx, &user); err != nil {
			return fmt.Errorf("failed to upsert user %s: %w", user.Username, err)
		}
	}

	fmt.Printf("\nSeeded %d users\n", len(users))
	return nil
}
