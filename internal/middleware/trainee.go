package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
)

// TraineeHeader carries the identity of the trainee using the simulator.
const TraineeHeader = "X-Trainee-ID"

type contextKey string

const traineeContextKey contextKey = "traineeID"

// Trainee injects the trainee identity from TraineeHeader into the request context.
// Requests without the header proceed anonymously.
func Trainee() gin.HandlerFunc {
	return func(c *gin.Context) {
		traineeID := strings.TrimSpace(c.GetHeader(TraineeHeader))
		if traineeID == "" {
			c.Next()
			return
		}

		ctx := WithTraineeID(c.Request.Context(), traineeID)
		c.Request = c.Request.WithContext(ctx)
		slog.Debug("trainee identity injected", "trainee_id", traineeID)
		c.Next()
	}
}

// WithTraineeID returns a copy of ctx carrying traineeID.
func WithTraineeID(ctx context.Context, traineeID string) context.Context {
	return context.WithValue(ctx, traineeContextKey, traineeID)
}

// TraineeID returns the trainee identity of a request, or "" when anonymous.
func TraineeID(ctx context.Context) string {
	id, _ := ctx.Value(traineeContextKey).(string)
	return id
}
