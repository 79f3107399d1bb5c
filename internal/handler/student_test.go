package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/course-stream/internal/middleware"
	"github.com/iliyamo/course-stream/internal/model"
	"github.com/iliyamo/course-stream/internal/queue"
	"github.com/iliyamo/course-stream/internal/repository"
	"github.com/iliyamo/course-stream/internal/service"
	"github.com/iliyamo/course-stream/internal/stream"
	"github.com/iliyamo/course-stream/internal/utils"
)

const secret = "handler-secret"

type stubAuthorizer struct {
	module *model.Module
	err    error
}

func (s stubAuthorizer) AuthorizeModule(context.Context, model.Identity, string) (*model.Module, error) {
	return s.module, s.err
}

func (s stubAuthorizer) AuthorizeCourse(context.Context, model.Identity, string) (*model.CourseDetail, error) {
	return nil, s.err
}

type stubIssuer struct {
	grant  stream.Grant
	err    error
	gotIP  string
	gotVid string
}

func (s *stubIssuer) Issue(videoID, clientIP string) (stream.Grant, error) {
	s.gotVid, s.gotIP = videoID, clientIP
	return s.grant, s.err
}

type failingAudit struct{ calls chan struct{} }

func (f failingAudit) Publish(context.Context, queue.AccessEvent) error {
	f.calls <- struct{}{}
	return errors.New("broker down")
}

type noUsers struct{}

func (noUsers) GetByID(context.Context, string) (model.User, error) {
	return model.User{}, repository.ErrNotFound
}

type noCourses struct{}

func (noCourses) ListEnrolled(context.Context, string) ([]model.CourseSummary, error) {
	return nil, nil
}

func serveView(t *testing.T, h *StudentHandler, remote string) *httptest.ResponseRecorder {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, model.Identity{ID: "stu-1", Email: "s@example.com", Role: model.RoleStudent}, time.Hour)
	require.NoError(t, err)

	e := echo.New()
	g := e.Group("/api/v1/student", middleware.RequireStudent(secret))
	g.GET("/modules/:moduleId/view", h.ViewModule)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/student/modules/m1/view", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestViewModuleInternalFailures(t *testing.T) {
	mod := &model.Module{ID: "m1", CourseID: "c1", VideoID: "vid-1"}

	tests := []struct {
		name   string
		authz  stubAuthorizer
		issuer *stubIssuer
	}{
		{"store failure", stubAuthorizer{err: errors.New("connection refused")}, &stubIssuer{}},
		{"module without video", stubAuthorizer{module: &model.Module{ID: "m1", CourseID: "c1"}}, &stubIssuer{}},
		{"signing failure", stubAuthorizer{module: mod}, &stubIssuer{err: errors.New("crypto/rsa: bad key")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewStudentHandler(tc.authz, tc.issuer, nil, noCourses{}, noUsers{}, zap.NewNop())
			rec := serveView(t, h, "198.51.100.4:4000")
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
		})
	}
}

func TestViewModuleMapsAuthorizerErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		body   string
	}{
		{service.ErrModuleNotFound, http.StatusNotFound, `{"error":"not found"}`},
		{service.ErrNotEnrolled, http.StatusForbidden, `{"error":"not enrolled"}`},
	}
	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			iss := &stubIssuer{}
			h := NewStudentHandler(stubAuthorizer{err: tc.err}, iss, nil, noCourses{}, noUsers{}, zap.NewNop())
			rec := serveView(t, h, "198.51.100.4:4000")
			assert.Equal(t, tc.status, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())
			assert.Empty(t, iss.gotVid, "no grant may be minted on denial")
		})
	}
}

func TestViewModuleAuditFailureDoesNotAffectResponse(t *testing.T) {
	iss := &stubIssuer{grant: stream.Grant{URL: "https://customer-a.cloudflarestream.com/vid-1/iframe?token=t"}}
	audit := failingAudit{calls: make(chan struct{}, 1)}
	h := NewStudentHandler(stubAuthorizer{module: &model.Module{ID: "m1", CourseID: "c1", VideoID: "vid-1"}}, iss, audit, noCourses{}, noUsers{}, zap.NewNop())

	rec := serveView(t, h, "[::ffff:198.51.100.4]:4000")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"signedUrl":"https://customer-a.cloudflarestream.com/vid-1/iframe?token=t"}`, rec.Body.String())
	assert.Equal(t, "vid-1", iss.gotVid)
	assert.NotEmpty(t, iss.gotIP)

	select {
	case <-audit.calls:
	default:
		t.Fatal("audit publish was not attempted")
	}
}
