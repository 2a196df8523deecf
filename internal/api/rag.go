package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// CreateRAGInstanceRequest creates a retrieval index.
type CreateRAGInstanceRequest struct {
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	EngineType       string         `json:"engine_type"`
	EngineSettings   map[string]any `json:"engine_settings,omitempty"`
	EmbeddingModelID string         `json:"embedding_model_id,omitempty"`
	LLMModelID       string         `json:"llm_model_id,omitempty"`
}

// UpdateRAGInstanceRequest updates instance settings. Nil fields are
// left unchanged.
type UpdateRAGInstanceRequest struct {
	Name             *string        `json:"name,omitempty"`
	Description      *string        `json:"description,omitempty"`
	EngineSettings   map[string]any `json:"engine_settings,omitempty"`
	EmbeddingModelID *string        `json:"embedding_model_id,omitempty"`
	LLMModelID       *string        `json:"llm_model_id,omitempty"`
	Enabled          *bool          `json:"enabled,omitempty"`
}

// ListRAGInstances returns a page of the caller's retrieval indexes.
func (c *Client) ListRAGInstances(ctx context.Context, page, perPage int) (*RAGInstanceList, error) {
	list := &RAGInstanceList{}
	if err := c.get(ctx, "/api/rag/instances", pageQuery(page, perPage), list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetRAGInstance fetches a single instance.
func (c *Client) GetRAGInstance(ctx context.Context, id string) (*RAGInstance, error) {
	instance := &RAGInstance{}
	if err := c.get(ctx, "/api/rag/instances/"+url.PathEscape(id), nil, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// CreateRAGInstance creates an instance.
func (c *Client) CreateRAGInstance(ctx context.Context, request *CreateRAGInstanceRequest) (*RAGInstance, error) {
	instance := &RAGInstance{}
	if err := c.post(ctx, "/api/rag/instances", request, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// UpdateRAGInstance updates an instance.
func (c *Client) UpdateRAGInstance(ctx context.Context, id string, request *UpdateRAGInstanceRequest) (*RAGInstance, error) {
	instance := &RAGInstance{}
	if err := c.put(ctx, "/api/rag/instances/"+url.PathEscape(id), request, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// DeleteRAGInstance deletes an instance and its files.
func (c *Client) DeleteRAGInstance(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/rag/instances/"+url.PathEscape(id))
}

// ListRAGFiles returns a page of an instance's files.
func (c *Client) ListRAGFiles(ctx context.Context, instanceID string, page, perPage int) (*RAGFileList, error) {
	list := &RAGFileList{}
	path := "/api/rag/instances/" + url.PathEscape(instanceID) + "/files"
	if err := c.get(ctx, path, pageQuery(page, perPage), list); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteRAGFile removes a file from an instance.
func (c *Client) DeleteRAGFile(ctx context.Context, instanceID, fileID string) error {
	return c.delete(ctx, "/api/rag/instances/"+url.PathEscape(instanceID)+"/files/"+url.PathEscape(fileID))
}

// UploadFile describes one document to upload.
type UploadFile struct {
	Name   string
	Reader io.Reader
}

// UploadRAGFiles uploads documents to an instance for ingestion.
// Files start in the pending state; track progress with RAGStatus or
// StreamRAGStatus.
func (c *Client) UploadRAGFiles(ctx context.Context, instanceID string, files []UploadFile) ([]RAGInstanceFile, error) {
	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)
	for _, file := range files {
		part, err := writer.CreateFormFile("files", file.Name)
		if err != nil {
			return nil, errors.Wrap(err, "creating form file")
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return nil, errors.Wrapf(err, "copying %s", file.Name)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "finalizing multipart body")
	}

	path := "/api/rag/instances/" + url.PathEscape(instanceID) + "/files"
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, &buffer)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "uploading files")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, errors.Wrap(err, "reading response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseError(resp.StatusCode, respBody)
	}

	var uploaded []RAGInstanceFile
	if err := json.Unmarshal(respBody, &uploaded); err != nil {
		return nil, errors.Wrap(err, "unmarshaling response")
	}
	return uploaded, nil
}

// GetRAGStatus fetches a point-in-time ingestion summary.
func (c *Client) GetRAGStatus(ctx context.Context, instanceID string) (*RAGStatus, error) {
	status := &RAGStatus{}
	if err := c.get(ctx, "/api/rag/instances/"+url.PathEscape(instanceID)+"/status", nil, status); err != nil {
		return nil, err
	}
	return status, nil
}

// RAGStatusStream streams ingestion status snapshots. Each update
// replaces the previous snapshot wholesale.
type RAGStatusStream struct {
	stream *Stream
}

// StreamRAGStatus opens a status stream for an instance.
func (c *Client) StreamRAGStatus(ctx context.Context, instanceID string) (*RAGStatusStream, error) {
	stream, err := c.stream(ctx, http.MethodGet, "/api/rag/instances/"+url.PathEscape(instanceID)+"/status/stream", nil)
	if err != nil {
		return nil, err
	}
	return &RAGStatusStream{stream: stream}, nil
}

// Recv returns the next status snapshot, skipping non-update frames.
func (s *RAGStatusStream) Recv() (*RAGStatus, error) {
	for {
		raw, err := s.stream.Recv()
		if err != nil {
			return nil, err
		}
		if raw.Name != "update" {
			continue
		}
		status := &RAGStatus{}
		if err := json.Unmarshal(raw.Data, status); err != nil {
			return nil, errors.Wrap(err, "unmarshaling status update")
		}
		return status, nil
	}
}

// Close aborts the stream.
func (s *RAGStatusStream) Close() error {
	return s.stream.Close()
}
