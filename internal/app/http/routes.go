package routes

import (
	"net/http"
	"strings"
	"time"

	"zapshift-backend/config"
	adminapi "zapshift-backend/internal/api/admin"
	authapi "zapshift-backend/internal/api/auth"
	"zapshift-backend/internal/api/billing"
	"zapshift-backend/internal/api/parcels"
	"zapshift-backend/internal/api/riders"
	stripewebhooks "zapshift-backend/internal/api/stripewebhook"
	"zapshift-backend/internal/api/users"
	"zapshift-backend/internal/app/http/middleware"
	domainusers "zapshift-backend/internal/domain/users"
	"zapshift-backend/internal/infra/identity"
	"zapshift-backend/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps is everything the handlers are built from. Google is nil when Google
// sign-in is not configured.
type Deps struct {
	Config    *config.Config
	Store     repository.Store
	Verifier  identity.Verifier
	Tokens    authapi.TokenIssuer
	Google    authapi.GoogleFlow
	Initiator billing.CheckoutStarter
	Finalizer Finalizer
	Log       *zap.Logger
}

// Finalizer serves both the redirect confirmation and the webhook.
type Finalizer interface {
	billing.SessionFinalizer
	stripewebhooks.SessionApplier
}

// NewEngine builds the gin engine with the global middleware and all routes.
func NewEngine(d Deps) *gin.Engine {
	r := gin.New()
	// ClientIP feeds the rate limiter; only listed proxies may set X-Forwarded-For.
	if err := r.SetTrustedProxies(d.Config.TrustedProxies); err != nil {
		d.Log.Warn("invalid trusted proxies, trusting none", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(d.Log))
	r.Use(cors.New(corsConfig(d.Config.CORSOrigin)))

	RegisterRoutes(r, d)
	return r
}

func corsConfig(origin string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if origin == "" || origin == "*" {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range strings.Split(origin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	cfg.AllowCredentials = true
	return cfg
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	usersH := users.NewHandler(d.Store, d.Log)
	parcelsH := parcels.NewHandler(d.Store.Parcels(), d.Log)
	ridersH := riders.NewHandler(d.Store, d.Log)
	billingH := billing.NewHandler(d.Initiator, d.Finalizer, d.Store.Payments(), d.Log)
	adminH := adminapi.NewHandler(d.Store, d.Log)

	authH := authapi.NewHandler(d.Store.Users(), d.Tokens, d.Google, d.Log)
	authH.FrontendRedirect = d.Config.GoogleFrontendRedirect
	authH.SecureCookies = d.Config.AppEnv == "production"

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Zap Shift running ....!")
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Signed by Stripe; the raw body must reach the handler untouched.
	if d.Config.StripeWebhookSecret != "" {
		webhookH := stripewebhooks.NewHandler(d.Config.StripeWebhookSecret, d.Finalizer, d.Log)
		r.POST("/webhooks/stripe", webhookH.StripeWebhook)
	}

	r.GET("/auth/google", authH.GoogleStart)
	r.GET("/auth/google/callback", authH.GoogleCallback)

	r.GET("/parcels", parcelsH.List)
	r.GET("/parcels/:id", parcelsH.Get)
	r.DELETE("/parcels/:id", parcelsH.Delete)
	r.GET("/riders", ridersH.List)

	// Apply input sanitization to public writes only
	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())
	public.POST("/users", usersH.Register)
	public.POST("/auth/login", authH.Login)
	public.POST("/parcels", parcelsH.Create)
	public.POST("/riders", ridersH.Apply)

	payments := r.Group("/")
	payments.Use(middleware.RateLimit(d.Config.RateLimitRPS, d.Config.RateLimitBurst))
	payments.POST("/create-checkout-session", billingH.CreateCheckoutSession)
	payments.PATCH("/payment-success", billingH.PaymentSuccess)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.Authenticate(d.Verifier))
	auth.GET("/me", usersH.GetCurrentUser)
	auth.PUT("/auth/password", middleware.SanitizeAndCleanInputMiddleware(), authH.SetPassword)
	auth.GET("/users/:email/role", middleware.RequireSelfOrAdmin("email"), usersH.GetRole)
	auth.GET("/payments", billingH.ListPayments)
	auth.PATCH("/riders/:id", middleware.RequireRole(domainusers.RoleAdmin), ridersH.UpdateStatus)

	admin := r.Group("/admin")
	admin.Use(middleware.Authenticate(d.Verifier), middleware.RequireRole(domainusers.RoleAdmin))
	admin.GET("/users", adminH.ListAllUsers)
	admin.GET("/payments", adminH.ListAllPayments)
	admin.GET("/stats", adminH.GetAdminStats)
}
