package ports

import (
	"context"

	"gotimbre/domain/audio"
	"gotimbre/domain/candidate"
	"gotimbre/domain/core"
)

// RenderRequest carries everything the external render step needs
type RenderRequest struct {
	CandidateID core.CandidateID
	Method      core.MethodID
	Params      candidate.Params
	Seed        uint32
}

// RenderOutput is the analyzed result of one render
type RenderOutput struct {
	Features candidate.Features
	Audio    audio.Buffer
}

// RendererPort renders a candidate and extracts its features. It is external
// to the search core; implementations may be called concurrently for
// different candidates.
type RendererPort interface {
	Render(ctx context.Context, req RenderRequest) (*RenderOutput, error)
}
