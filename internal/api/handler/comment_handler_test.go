package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/projectlink/projectlink-api/internal/core/domain"
	"github.com/projectlink/projectlink-api/internal/core/ports"
)

func TestCommentHandler_Add(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	h := NewCommentHandler(&stubCommentService{
		addFn: func(ctx context.Context, actorID, projectID, text string) (*ports.CommentView, error) {
			if strings.TrimSpace(text) == "" {
				return nil, domain.ErrEmptyComment
			}
			return &ports.CommentView{
				Comment: domain.Comment{ID: "c1", UserID: actorID, Text: text, CreatedAt: at},
				User:    domain.PublicUser{ID: actorID, Name: "Cy", Institution: "MIT"},
			}, nil
		},
	})

	c, rec := newContext(http.MethodPost, "/api/projects/p1/comments", `{"text":"great work"}`, "u1")
	require.NoError(t, h.Add(withParams(c, "id", "p1")))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp commentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "c1", resp.ID)
	require.Equal(t, "great work", resp.Text)
	require.Equal(t, "Cy", resp.User.Name)
	require.Equal(t, "MIT", resp.User.Institution)

	c, _ = newContext(http.MethodPost, "/api/projects/p1/comments", `{"text":"   "}`, "u1")
	require.ErrorIs(t, h.Add(withParams(c, "id", "p1")), domain.ErrEmptyComment)
}

func TestCommentHandler_List_KeepsOrder(t *testing.T) {
	h := NewCommentHandler(&stubCommentService{
		listFn: func(ctx context.Context, projectID string) ([]ports.CommentView, error) {
			return []ports.CommentView{
				{Comment: domain.Comment{ID: "c1", Text: "first"}},
				{Comment: domain.Comment{ID: "c2", Text: "second"}},
			}, nil
		},
	})

	c, rec := newContext(http.MethodGet, "/api/projects/p1/comments", "", "")
	require.NoError(t, h.List(withParams(c, "id", "p1")))

	var resp []commentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	require.Equal(t, "c1", resp[0].ID)
	require.Equal(t, "c2", resp[1].ID)
}

func TestCommentHandler_Delete(t *testing.T) {
	h := NewCommentHandler(&stubCommentService{
		deleteFn: func(ctx context.Context, actorID, projectID, commentID string) error {
			require.Equal(t, "c9", commentID)
			if actorID != "author" {
				return domain.ErrForbidden
			}
			return nil
		},
	})

	c, _ := newContext(http.MethodDelete, "/api/projects/p1/comments/c9", "", "stranger")
	require.ErrorIs(t, h.Delete(withParams(c, "id", "p1", "commentId", "c9")), domain.ErrForbidden)

	c, rec := newContext(http.MethodDelete, "/api/projects/p1/comments/c9", "", "author")
	require.NoError(t, h.Delete(withParams(c, "id", "p1", "commentId", "c9")))
	require.Equal(t, http.StatusOK, rec.Code)
}
