package router

import (
	"github.com/gin-gonic/gin"
	"github.com/medrent/backend/internal/interfaces/http/handler"
	"github.com/medrent/backend/internal/interfaces/http/middleware"
)

// Handlers holds every HTTP handler the API serves
type Handlers struct {
	System       *handler.SystemHandler
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Patient      *handler.PatientHandler
	Company      *handler.CompanyHandler
	Device       *handler.DeviceHandler
	Product      *handler.ProductHandler
	Location     *handler.LocationHandler
	Stock        *handler.StockHandler
	Payment      *handler.PaymentHandler
	CNAM         *handler.CNAMHandler
	Rental       *handler.RentalHandler
	Sale         *handler.SaleHandler
	Diagnostic   *handler.DiagnosticHandler
	Appointment  *handler.AppointmentHandler
	Task         *handler.TaskHandler
	Notification *handler.NotificationHandler
	File         *handler.FileHandler
	Import       *handler.ImportHandler
	Analytics    *handler.AnalyticsHandler
}

// APIConfig carries the cross-cutting middleware for the versioned API
type APIConfig struct {
	// Auth authenticates every /api/v1 request except its skip paths
	Auth gin.HandlerFunc
	// RateLimit runs after Auth so limits are keyed per user; nil disables it
	RateLimit gin.HandlerFunc
	// Idempotency guards record-creating POSTs; nil disables it
	Idempotency gin.HandlerFunc
	// Profiling labels samples per route and role; nil disables it
	Profiling gin.HandlerFunc
}

// RegisterAPI mounts /health and the /api/v1 routes on engine
func RegisterAPI(engine *gin.Engine, h Handlers, cfg APIConfig) {
	engine.GET("/health", h.System.Health)

	var global []gin.HandlerFunc
	if cfg.Auth != nil {
		global = append(global, cfg.Auth)
	}
	if cfg.Profiling != nil {
		global = append(global, cfg.Profiling)
	}
	if cfg.RateLimit != nil {
		global = append(global, cfg.RateLimit)
	}
	idempotent := func(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
		if cfg.Idempotency == nil {
			return handlers
		}
		return append([]gin.HandlerFunc{cfg.Idempotency}, handlers...)
	}

	r := NewRouter(engine, WithMiddleware(global...))
	r.Register(
		systemRoutes(h),
		authRoutes(h),
		userRoutes(h),
		partnerRoutes(h),
		catalogRoutes(h),
		inventoryRoutes(h),
		financeRoutes(h),
		tradeRoutes(h, idempotent),
		clinicalRoutes(h),
		workflowRoutes(h),
		fileRoutes(h),
		adminRoutes(h),
	)
	r.Setup()
}

// routeSet groups several DomainGroups mounted at the API root
type routeSet []*DomainGroup

func (s routeSet) RegisterRoutes(rg *gin.RouterGroup) {
	for _, g := range s {
		g.RegisterRoutes(rg)
	}
}

func systemRoutes(h Handlers) RouteRegistrar {
	return NewDomainGroup("system", "").
		GET("/health", h.System.Health).
		GET("/system/info", h.System.GetSystemInfo)
}

func authRoutes(h Handlers) RouteRegistrar {
	return NewDomainGroup("auth", "/auth").
		POST("/login", h.Auth.Login).
		POST("/refresh", h.Auth.RefreshToken).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.GetCurrentUser).
		PUT("/password", h.Auth.ChangePassword)
}

func userRoutes(h Handlers) RouteRegistrar {
	return NewDomainGroup("users", "/users").
		Use(middleware.RequireAdmin()).
		GET("", h.User.List).
		POST("", h.User.Create).
		GET("/:id", h.User.GetByID).
		PUT("/:id", h.User.Update).
		DELETE("/:id", h.User.Delete)
}

func partnerRoutes(h Handlers) RouteRegistrar {
	patients := NewDomainGroup("patients", "/patients").
		GET("", h.Patient.List).
		POST("", h.Patient.Create).
		GET("/:id", h.Patient.GetByID).
		PUT("/:id", h.Patient.Update).
		DELETE("/:id", h.Patient.Delete).
		GET("/:id/history", h.Patient.History).
		POST("/:id/notes", h.Patient.AddNote).
		GET("/:id/files", h.File.ListByPatient)

	companies := NewDomainGroup("companies", "/companies").
		GET("", h.Company.List).
		POST("", h.Company.Create).
		GET("/:id", h.Company.GetByID).
		PUT("/:id", h.Company.Update).
		DELETE("/:id", h.Company.Delete)

	return routeSet{patients, companies}
}

func catalogRoutes(h Handlers) RouteRegistrar {
	devices := NewDomainGroup("medical-devices", "/medical-devices").
		GET("", h.Device.List).
		POST("", h.Device.Create).
		GET("/:id", h.Device.GetByID).
		PUT("/:id", h.Device.Update).
		DELETE("/:id", h.Device.Delete)

	products := NewDomainGroup("products", "/products").
		GET("", h.Product.List).
		POST("", h.Product.Create).
		GET("/:id", h.Product.GetByID).
		PUT("/:id", h.Product.Update).
		DELETE("/:id", h.Product.Delete)

	return routeSet{devices, products}
}

func inventoryRoutes(h Handlers) RouteRegistrar {
	locations := NewDomainGroup("stock-locations", "/stock-locations").
		GET("", h.Location.List).
		POST("", h.Location.Create).
		GET("/:id", h.Location.GetByID).
		PUT("/:id", h.Location.Update).
		DELETE("/:id", h.Location.Delete)

	stock := NewDomainGroup("stock", "/stock").
		GET("/inventory", h.Stock.Inventory).
		GET("/my-inventory", h.Stock.MyInventory).
		GET("/transfers", h.Stock.ListTransfers).
		POST("/transfers", h.Stock.Transfer).
		PATCH("/transfers/:id/verify", h.Stock.VerifyTransfer).
		GET("/transfer-requests", h.Stock.ListTransferRequests).
		POST("/transfer-requests", h.Stock.CreateTransferRequest).
		GET("/transfer-requests/:id", h.Stock.GetTransferRequest).
		PATCH("/:id", h.Stock.Adjust)

	return routeSet{locations, stock}
}

func financeRoutes(h Handlers) RouteRegistrar {
	payments := NewDomainGroup("payments", "/payments").
		GET("", h.Payment.List).
		POST("", h.Payment.Create).
		GET("/:id", h.Payment.GetByID).
		PUT("/:id", h.Payment.Update).
		DELETE("/:id", h.Payment.Delete)

	bonds := NewDomainGroup("cnam-bonds", "/cnam-bonds").
		GET("", h.CNAM.ListBonds).
		POST("", h.CNAM.CreateBond).
		PATCH("", h.CNAM.ReconcileBonds).
		DELETE("/:id", h.CNAM.DeleteBond)

	dossiers := NewDomainGroup("cnam-dossiers", "/cnam-dossiers").
		GET("", h.CNAM.ListDossiers).
		GET("/:id", h.CNAM.GetDossier).
		PATCH("/:id/step", h.CNAM.AdvanceStep)

	return routeSet{payments, bonds, dossiers}
}

func tradeRoutes(h Handlers, idempotent func(...gin.HandlerFunc) []gin.HandlerFunc) RouteRegistrar {
	rentals := NewDomainGroup("rentals", "/rentals").
		GET("", h.Rental.List).
		POST("", idempotent(h.Rental.Create)...).
		POST("/validate-periods", h.Rental.ValidatePeriods).
		GET("/:id", h.Rental.GetByID).
		PUT("/:id", h.Rental.Update).
		DELETE("/:id", h.Rental.Delete).
		POST("/:id/periods", h.Rental.AddPeriod)

	periods := NewDomainGroup("rental-periods", "/rental-periods").
		PUT("/:id", h.Rental.UpdatePeriod).
		DELETE("/:id", h.Rental.DeletePeriod)

	sales := NewDomainGroup("sales", "/sales").
		GET("", h.Sale.List).
		POST("", idempotent(h.Sale.Create)...).
		GET("/:id", h.Sale.GetByID).
		GET("/:id/invoice", h.Sale.Invoice).
		PUT("/:id", h.Sale.Update).
		DELETE("/:id", h.Sale.Delete)

	return routeSet{rentals, periods, sales}
}

func clinicalRoutes(h Handlers) RouteRegistrar {
	diagnostics := NewDomainGroup("diagnostics", "/diagnostics").
		GET("", h.Diagnostic.List).
		POST("", h.Diagnostic.Create).
		GET("/:id", h.Diagnostic.GetByID).
		PUT("/:id/result", h.Diagnostic.UpdateResult).
		DELETE("/:id", h.Diagnostic.Delete)

	appointments := NewDomainGroup("appointments", "/appointments").
		GET("", h.Appointment.List).
		POST("", h.Appointment.Create).
		GET("/:id", h.Appointment.GetByID).
		PUT("/:id", h.Appointment.Update).
		DELETE("/:id", h.Appointment.Delete)

	return routeSet{diagnostics, appointments}
}

func workflowRoutes(h Handlers) RouteRegistrar {
	tasks := NewDomainGroup("tasks", "/tasks").
		GET("", h.Task.List).
		POST("", h.Task.Create).
		GET("/:id", h.Task.GetByID).
		PUT("/:id", h.Task.Update).
		DELETE("/:id", h.Task.Delete)

	notifications := NewDomainGroup("notifications", "/notifications").
		GET("", h.Notification.List).
		PATCH("/read-all", h.Notification.MarkAllRead).
		PATCH("/:id/read", h.Notification.MarkRead).
		DELETE("/:id", h.Notification.Delete)

	return routeSet{tasks, notifications}
}

func fileRoutes(h Handlers) RouteRegistrar {
	files := NewDomainGroup("files", "/files").
		POST("", h.File.Upload).
		GET("/:id", h.File.GetByID).
		GET("/:id/url", h.File.DownloadURL).
		DELETE("/:id", h.File.Delete)

	imports := NewDomainGroup("import", "/import").
		POST("/preview", h.Import.Preview).
		POST("/patients", h.Import.ImportPatients).
		POST("/devices", h.Import.ImportDevices).
		GET("/history", h.Import.History)

	analytics := NewDomainGroup("analytics", "/analytics").
		GET("/summary", h.Analytics.Summary)

	return routeSet{files, imports, analytics}
}

func adminRoutes(h Handlers) RouteRegistrar {
	return NewDomainGroup("admin", "/admin").
		Use(middleware.RequireAdmin()).
		GET("/transfer-requests", h.Stock.ListTransferRequests).
		PATCH("/transfer-requests/:id/review", h.Stock.ReviewTransferRequest).
		POST("/notifications/sweep", h.Notification.Sweep)
}
