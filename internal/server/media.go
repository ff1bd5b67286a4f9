package server

import (
	"context"

	"helplink/pkg/types"
)

// Media references are stored as object keys; handlers resolve them to
// public URLs on the way out and optionally verify that referenced objects
// exist on the way in.

func (s *Service) presentNeed(need *types.Need) *types.Need {
	need.Images = s.media.ResolveAll(need.Images)
	need.Videos = s.media.ResolveAll(need.Videos)
	return need
}

func (s *Service) presentNeeds(needs []*types.Need) []*types.Need {
	for _, need := range needs {
		s.presentNeed(need)
	}
	return needs
}

func (s *Service) presentNeedPage(page *types.Page[*types.Need]) *types.Page[*types.Need] {
	s.presentNeeds(page.Results)
	return page
}

func (s *Service) presentResponse(response *types.Response) *types.Response {
	response.Images = s.media.ResolveAll(response.Images)
	response.Videos = s.media.ResolveAll(response.Videos)
	return response
}

func (s *Service) presentResponses(responses []*types.Response) []*types.Response {
	for _, response := range responses {
		s.presentResponse(response)
	}
	return responses
}

func (s *Service) presentResponsePage(page *types.Page[*types.Response]) *types.Page[*types.Response] {
	s.presentResponses(page.Results)
	return page
}

func (s *Service) verifyMediaRefs(ctx context.Context, images, videos []string) error {
	if err := s.media.VerifyRefs(ctx, images); err != nil {
		return err
	}
	return s.media.VerifyRefs(ctx, videos)
}

func (s *Service) verifyMediaRefsPtr(ctx context.Context, images, videos *[]string) error {
	if images != nil {
		if err := s.media.VerifyRefs(ctx, *images); err != nil {
			return err
		}
	}
	if videos != nil {
		if err := s.media.VerifyRefs(ctx, *videos); err != nil {
			return err
		}
	}
	return nil
}
