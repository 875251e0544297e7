package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"pocket-budget/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type RequestIDTestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func (s *RequestIDTestSuite) SetupTest() {
	s.echo = echo.New()
}

func TestRequestIDTestSuite(t *testing.T) {
	suite.Run(t, new(RequestIDTestSuite))
}

func (s *RequestIDTestSuite) run(req *http.Request, next echo.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	s.Require().NoError(RequestID()(next)(c))
	return rec
}

func (s *RequestIDTestSuite) TestRequestID_GeneratesUUID() {
	var seen string
	rec := s.run(httptest.NewRequest(http.MethodGet, "/", nil), func(c echo.Context) error {
		seen = GetTraceID(c)
		return c.NoContent(http.StatusOK)
	})

	s.Regexp(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, seen)
	s.Equal(seen, rec.Header().Get(TraceIDHeader))
}

func (s *RequestIDTestSuite) TestRequestID_ReusesIncomingHeader() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceIDHeader, "upstream-trace-42")

	rec := s.run(req, func(c echo.Context) error {
		s.Equal("upstream-trace-42", c.Get(TraceIDContextKey))
		return c.NoContent(http.StatusOK)
	})

	s.Equal("upstream-trace-42", rec.Header().Get(TraceIDHeader))
}

func (s *RequestIDTestSuite) TestRequestID_DistinctPerRequest() {
	first := s.run(httptest.NewRequest(http.MethodGet, "/", nil), func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	second := s.run(httptest.NewRequest(http.MethodGet, "/", nil), func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	s.NotEqual(first.Header().Get(TraceIDHeader), second.Header().Get(TraceIDHeader))
}

func (s *RequestIDTestSuite) TestRequestID_PropagatesToRequestContext() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceIDHeader, "ctx-trace")

	s.run(req, func(c echo.Context) error {
		s.Equal("ctx-trace", c.Request().Context().Value(services.CorrelationIDKey))
		return c.NoContent(http.StatusOK)
	})
}

func (s *RequestIDTestSuite) TestGetTraceID_ReturnsEmptyWhenNotSet() {
	c := s.echo.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	s.Empty(GetTraceID(c))

	c.Set(TraceIDContextKey, 42)
	s.Empty(GetTraceID(c))
}
