package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/musclegram/musclegram/api/actor"
	"github.com/musclegram/musclegram/api/feed"
	"github.com/musclegram/musclegram/api/graph"
	"github.com/musclegram/musclegram/api/notification"
	"github.com/musclegram/musclegram/api/stream"
	"github.com/musclegram/musclegram/backend"
	"github.com/musclegram/musclegram/events"
	"github.com/musclegram/musclegram/hydration"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("api")

type Config struct {
	// JWTSecret verifies HS256 bearer tokens. When empty, tokens are parsed
	// without signature checks, which is only suitable for local development.
	JWTSecret string
}

// Server is the HTTP API
type Server struct {
	e        *echo.Echo
	backend  *backend.Backend
	hydrator *hydration.Hydrator
	sub      events.Subscriber

	jwtSecret []byte
}

func NewServer(b *backend.Backend, hydrator *hydration.Hydrator, sub events.Subscriber, cfg Config) *Server {
	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	e.Logger.SetLevel(log.WARN)

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"*"},
		ExposeHeaders: []string{"ETag"},
	}))

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(traceRequests)

	s := &Server{
		e:        e,
		backend:  b,
		hydrator: hydrator,
		sub:      sub,
	}
	if cfg.JWTSecret != "" {
		s.jwtSecret = []byte(cfg.JWTSecret)
	}

	s.registerEndpoints()

	return s
}

func (s *Server) Start(addr string) error {
	slog.Info("starting api server", "addr", addr)
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

func (s *Server) registerEndpoints() {
	g := s.e.Group("/api")

	// feed and posts
	g.GET("/feed", func(c echo.Context) error {
		return feed.HandleGetFeed(c, s.backend, s.hydrator)
	}, s.optionalAuth)
	g.GET("/users/:id/posts", func(c echo.Context) error {
		return feed.HandleGetUserPosts(c, s.backend, s.hydrator)
	}, s.optionalAuth)
	g.POST("/posts", func(c echo.Context) error {
		return feed.HandleCreatePost(c, s.backend, s.hydrator)
	}, s.requireAuth)
	g.GET("/posts/:id", func(c echo.Context) error {
		return feed.HandleGetPost(c, s.backend, s.hydrator)
	}, s.optionalAuth)
	g.PUT("/posts/:id", func(c echo.Context) error {
		return feed.HandleUpdatePost(c, s.backend, s.hydrator)
	}, s.requireAuth)
	g.DELETE("/posts/:id", func(c echo.Context) error {
		return feed.HandleDeletePost(c, s.backend)
	}, s.requireAuth)

	// likes and comments
	g.POST("/posts/:id/like", func(c echo.Context) error {
		return feed.HandleLike(c, s.backend, s.hydrator)
	}, s.requireAuth)
	g.DELETE("/posts/:id/like", func(c echo.Context) error {
		return feed.HandleUnlike(c, s.backend, s.hydrator)
	}, s.requireAuth)
	g.GET("/posts/:id/likes", func(c echo.Context) error {
		return feed.HandleGetLikes(c, s.backend, s.hydrator)
	})
	g.GET("/posts/:id/comments", func(c echo.Context) error {
		return feed.HandleGetComments(c, s.backend, s.hydrator)
	})
	g.POST("/posts/:id/comments", func(c echo.Context) error {
		return feed.HandleCreateComment(c, s.backend, s.hydrator)
	}, s.requireAuth)
	g.DELETE("/posts/:id/comments/:commentId", func(c echo.Context) error {
		return feed.HandleDeleteComment(c, s.backend)
	}, s.requireAuth)

	// graph
	g.POST("/users/:id/follow", func(c echo.Context) error {
		return graph.HandleFollow(c, s.backend)
	}, s.requireAuth)
	g.DELETE("/users/:id/follow", func(c echo.Context) error {
		return graph.HandleUnfollow(c, s.backend)
	}, s.requireAuth)
	g.GET("/users/:id/followers", func(c echo.Context) error {
		return graph.HandleGetFollowers(c, s.backend, s.hydrator)
	})
	g.GET("/users/:id/following", func(c echo.Context) error {
		return graph.HandleGetFollowing(c, s.backend, s.hydrator)
	})

	// profiles
	g.GET("/users", func(c echo.Context) error {
		return actor.HandleSearchUsers(c, s.backend, s.hydrator)
	})
	g.GET("/users/:id", func(c echo.Context) error {
		return actor.HandleGetProfile(c, s.hydrator)
	}, s.optionalAuth)
	g.PUT("/profile", func(c echo.Context) error {
		return actor.HandlePutProfile(c, s.backend)
	}, s.requireAuth)
	g.GET("/users/:id/analytics", func(c echo.Context) error {
		return actor.HandleGetAnalytics(c, s.backend)
	})

	// exercises and goals
	g.GET("/exercises", func(c echo.Context) error {
		return actor.HandleGetExercises(c, s.backend)
	}, s.optionalAuth)
	g.POST("/exercises", func(c echo.Context) error {
		return actor.HandleAddExercise(c, s.backend)
	}, s.requireAuth)
	g.DELETE("/exercises/:id", func(c echo.Context) error {
		return actor.HandleDeleteExercise(c, s.backend)
	}, s.requireAuth)
	g.GET("/goal", func(c echo.Context) error {
		return actor.HandleGetGoal(c, s.backend)
	}, s.requireAuth)
	g.PUT("/goal", func(c echo.Context) error {
		return actor.HandlePutGoal(c, s.backend)
	}, s.requireAuth)

	// notifications
	g.GET("/notifications", func(c echo.Context) error {
		return notification.HandleListNotifications(c, s.backend)
	}, s.requireAuth)
	g.GET("/notifications/unread", func(c echo.Context) error {
		return notification.HandleGetUnreadCount(c, s.backend)
	}, s.requireAuth)
	g.POST("/notifications/read", func(c echo.Context) error {
		return notification.HandleUpdateSeen(c, s.backend)
	}, s.requireAuth)

	g.GET("/stream", func(c echo.Context) error {
		return stream.HandleStream(c, s.sub)
	}, s.optionalAuth)
}

// traceRequests opens a server span per request so handler spans nest under
// it and error logs can carry the trace id.
func traceRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		ctx, span := tracer.Start(req.Context(), req.Method+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("http.target", req.URL.Path)),
		)
		defer span.End()

		c.SetRequest(req.WithContext(ctx))
		return next(c)
	}
}
