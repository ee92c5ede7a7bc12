package contacts

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	recoverware "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/goliatone/go-contacts/middleware/jwtware"
	"github.com/goliatone/go-contacts/ratelimit"
)

// ServerOptions collects everything the HTTP surface needs.
type ServerOptions struct {
	Config      Config
	Controller  *HTTPController
	Validator   TokenValidator
	Limiter     ratelimit.Store
	LimitMax    int
	LimitWindow time.Duration
	Logger      Logger
}

// NewServer assembles the fiber application: panic recovery, CORS, the rate
// limiter on every mutating route, and the bearer-token gate in front of the
// contact and avatar routes.
func NewServer(opts ServerOptions) *fiber.App {
	logger := opts.Logger
	if logger == nil {
		logger = defLogger{}
	}

	app := fiber.New(fiber.Config{
		AppName: "contacts",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			logger.Error("unhandled request error", "path", c.Path(), "error", err)
			return RenderError(c, err)
		},
	})

	app.Use(recoverware.New())
	app.Use(cors.New())

	limiter := ratelimit.New(ratelimit.Config{
		Store:  opts.Limiter,
		Max:    opts.LimitMax,
		Window: opts.LimitWindow,
		OnError: func(c *fiber.Ctx, err error) {
			logger.Warn("rate limit store failure, failing open", "error", err)
		},
	})

	protected := jwtware.New(jwtware.Config{
		TokenValidator: gateValidator{opts.Validator},
		ContextKey:     opts.Config.GetContextKey(),
		TokenLookup:    opts.Config.GetTokenLookup(),
		AuthScheme:     opts.Config.GetAuthScheme(),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return RenderError(c, ErrUnauthenticated)
		},
		ContextEnricher: enrichRequestContext,
	})

	ctrl := opts.Controller

	app.Post(ctrl.Routes.Register, limiter, ctrl.Register)
	app.Post(ctrl.Routes.Login, limiter, ctrl.Login)
	app.Post(ctrl.Routes.Refresh, limiter, ctrl.Refresh)
	app.Post(ctrl.Routes.Resend, limiter, ctrl.ResendVerification)
	app.Get(ctrl.Routes.Confirm, limiter, ctrl.Confirm)

	app.Get(ctrl.Routes.Contacts, protected, ctrl.ListContacts)
	app.Post(ctrl.Routes.Contacts, protected, limiter, ctrl.CreateContact)
	app.Delete(ctrl.Routes.Contact, protected, limiter, ctrl.DeleteContact)
	app.Post(ctrl.Routes.UploadAvatar, protected, limiter, ctrl.UploadAvatar)

	return app
}

// gateValidator narrows the package validator to the interface the gate
// middleware consumes.
type gateValidator struct {
	inner TokenValidator
}

func (g gateValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	if g.inner == nil {
		return nil, ErrTokenMalformed
	}
	claims, err := g.inner.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// enrichRequestContext propagates the resolved account into the standard
// context so repositories and commands can read it without fiber types.
func enrichRequestContext(ctx context.Context, claims jwtware.AuthClaims) context.Context {
	if full, ok := claims.(AuthClaims); ok {
		ctx = WithClaimsContext(ctx, full)
	}
	if id, err := uuid.Parse(claims.UserID()); err == nil {
		ctx = WithIdentityContext(ctx, id)
	}
	return ctx
}
