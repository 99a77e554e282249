package in

import (
	"context"

	"studyhub/internal/modules/progress/dto"
)

type Usecase interface {
	Summary(ctx context.Context) (dto.SummaryOutput, error)
}
