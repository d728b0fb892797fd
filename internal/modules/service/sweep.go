package service

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	mq "github.com/memodb-io/sitestore/internal/infra/queue"
	"github.com/memodb-io/sitestore/internal/pkg/apperr"
	"go.uber.org/zap"
)

// SweepHandler consumes save-completed events and sweeps the saved project.
// Deliveries for projects deleted in the meantime are acknowledged.
func SweepHandler(assets AssetService, log *zap.Logger) mq.Handler {
	return func(ctx context.Context, body []byte) error {
		var ev mq.SaveCompleted
		if err := sonic.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", mq.RoutingSaveCompleted, err)
		}
		projectID, err := uuid.Parse(ev.ProjectID)
		if err != nil {
			return fmt.Errorf("decode %s: project_id: %w", mq.RoutingSaveCompleted, err)
		}

		n, err := assets.Sweep(ctx, projectID)
		if apperr.Is(err, apperr.KindNotFound) {
			log.Sugar().Debugw("sweep skipped, project is gone", "project_id", projectID)
			return nil
		}
		if err != nil {
			return err
		}
		log.Sugar().Debugw("sweep done", "project_id", projectID, "version_id", ev.VersionID, "removed", n)
		return nil
	}
}
