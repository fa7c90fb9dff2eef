package repository

import (
	"context"
)

// Encoder result statuses.
const (
	EncoderStatusCompleted  = "COMPLETED"
	EncoderStatusProcessing = "PROCESSING"
	EncoderStatusError      = "ERROR"
)

// EncodeRequest asks the external encoder to process a raw video file.
type EncodeRequest struct {
	ResourceID string `json:"resource_id"`
	FilePath   string `json:"file_path"`
}

// EncoderResult is the message the external encoder reports back.
// Video is set for COMPLETED and PROCESSING results, Message for ERROR results.
type EncoderResult struct {
	Status       string                `json:"status" validate:"required,oneof=COMPLETED PROCESSING ERROR"`
	ID           string                `json:"id,omitempty" validate:"required_unless=Status ERROR"`
	OutputBucket string                `json:"output_bucket,omitempty"`
	Video        *EncoderVideoMetadata `json:"video,omitempty" validate:"required_unless=Status ERROR"`
	Error        string                `json:"error,omitempty"`
	Message      *EncoderMessage       `json:"message,omitempty" validate:"required_if=Status ERROR"`
}

// EncoderVideoMetadata describes an encoded output.
type EncoderVideoMetadata struct {
	EncodedVideoFolder string `json:"encoded_video_folder"`
	ResourceID         string `json:"resource_id" validate:"required"`
	FilePath           string `json:"file_path" validate:"required"`
}

// EncoderMessage echoes the request that failed.
type EncoderMessage struct {
	ResourceID string `json:"resource_id"`
	FilePath   string `json:"file_path"`
}

// MessageQueue defines the interface for message queue operations.
// Implementations should be provided by the infrastructure layer (e.g., RabbitMQ).
type MessageQueue interface {
	// PublishEncodeRequest sends a raw video to the encoder.
	// Used by the API server after a trailer or video file is stored.
	PublishEncodeRequest(ctx context.Context, req EncodeRequest) error

	// ConsumeEncoderResults starts consuming encoder results from the queue.
	// The handler function is called for each received result.
	// Returns when ctx is cancelled or the delivery channel closes.
	// Used by the worker service.
	ConsumeEncoderResults(ctx context.Context, handler func(result EncoderResult) error) error

	// Close gracefully closes the connection to the message queue.
	Close() error
}
