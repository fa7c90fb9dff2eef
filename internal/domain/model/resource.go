package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/hszk-dev/gocatalog/internal/domain/validation"
)

// Resource is a raw file received from a client, before it is stored.
type Resource struct {
	Name        string
	ContentType string
	Content     []byte
	Checksum    string
}

// NewResource wraps content and computes its SHA-256 checksum.
func NewResource(name, contentType string, content []byte) Resource {
	sum := sha256.Sum256(content)
	return Resource{
		Name:        name,
		ContentType: contentType,
		Content:     content,
		Checksum:    hex.EncodeToString(sum[:]),
	}
}

// Size returns the content length in bytes.
func (r Resource) Size() int64 {
	return int64(len(r.Content))
}

// ValidateResource checks that a resource can be stored.
func ValidateResource(r Resource, n *validation.Notification) error {
	if strings.TrimSpace(r.Name) == "" {
		if err := n.Append(validation.NewError("'name' should not be empty")); err != nil {
			return err
		}
	}
	if r.Name == "." || r.Name == ".." {
		if err := n.Append(validation.NewError("'name' must not be a relative path")); err != nil {
			return err
		}
	}
	if strings.ContainsAny(r.Name, `/\`) {
		if err := n.Append(validation.NewError("'name' must not contain path separators")); err != nil {
			return err
		}
	}
	if len(r.Content) == 0 {
		if err := n.Append(validation.NewError("'content' should not be empty")); err != nil {
			return err
		}
	}
	return nil
}
