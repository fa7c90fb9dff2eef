package usecase

import (
	"fmt"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
)

// InternalError reports an unexpected failure while writing a video.
// It wraps the original cause and names the affected video.
type InternalError struct {
	Op      string
	VideoID model.VideoID
	Err     error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("an error on %s video was observed [videoID:%s]: %v", e.Op, e.VideoID, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}
