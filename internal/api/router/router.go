package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shift-flow/backend/config"
	"shift-flow/backend/internal/api/handler"
	"shift-flow/backend/internal/api/middleware"
	"shift-flow/backend/internal/model"
	"shift-flow/backend/pkg/jwt"
	"shift-flow/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("", h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.POST("", middleware.RoleAuth(model.RoleAdmin), h.User.CreateUser)
				users.PUT("/:id", h.User.UpdateUser)
				users.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.User.DeleteUser)
			}

			// 排班组模块（组结构由系统管理员维护，组内权限由 Service 层鉴权）
			groups := authorized.Group("/groups")
			{
				groups.GET("", h.Group.ListGroups)
				groups.GET("/:id", h.Group.GetGroup)
				groups.POST("", middleware.RoleAuth(model.RoleAdmin), h.Group.CreateGroup)
				groups.PUT("/:id", middleware.RoleAuth(model.RoleAdmin), h.Group.UpdateGroup)
				groups.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Group.DeleteGroup)
				groups.GET("/:id/members", h.Group.ListMembers)
				groups.POST("/:id/members", middleware.RoleAuth(model.RoleAdmin), h.Group.AddMember)
				groups.DELETE("/:id/members/:user_id", middleware.RoleAuth(model.RoleAdmin), h.Group.RemoveMember)
				groups.GET("/:id/shift-admins", h.Group.ListShiftAdmins)
				groups.POST("/:id/shift-admins", middleware.RoleAuth(model.RoleAdmin), h.Group.AddShiftAdmin)
				groups.DELETE("/:id/shift-admins/:user_id", middleware.RoleAuth(model.RoleAdmin), h.Group.RemoveShiftAdmin)
			}

			// 班次类型模块（组内班次管理员，Service 层鉴权）
			shiftTypes := authorized.Group("/shift-types")
			{
				shiftTypes.GET("", h.ShiftType.ListShiftTypes)
				shiftTypes.GET("/:id", h.ShiftType.GetShiftType)
				shiftTypes.POST("", h.ShiftType.CreateShiftType)
				shiftTypes.PUT("/:id", h.ShiftType.UpdateShiftType)
				shiftTypes.DELETE("/:id", h.ShiftType.DeleteShiftType)
			}

			// 班次模块（组内班次管理员，Service 层鉴权）
			shifts := authorized.Group("/shifts")
			{
				shifts.GET("", h.Shift.ListShifts)
				shifts.GET("/:id", h.Shift.GetShift)
				shifts.POST("", h.Shift.CreateShift)
				shifts.PUT("/:id/owner", h.Shift.MoveShift)
				shifts.DELETE("/:id", h.Shift.DeleteShift)
				shifts.POST("/:id/synchronize", h.Calendar.SynchronizeShift)
			}

			// 换班模块（参与者/组内班次管理员，Service 层鉴权）
			exchanges := authorized.Group("/exchanges")
			{
				exchanges.GET("", h.Exchange.ListExchanges)
				exchanges.GET("/:id", h.Exchange.GetExchange)
				exchanges.POST("", h.Exchange.CreateExchange)
				exchanges.PUT("/:id/approval", h.Exchange.UpdateParticipantApproval)
				exchanges.PUT("/:id/admin-approval", h.Exchange.UpdateAdminApproval)
				exchanges.DELETE("/:id", h.Exchange.DeleteExchange)
			}

			// 日历同步模块
			authorized.POST("/calendar/synchronize", h.Calendar.Synchronize)
			authorized.GET("/calendars", middleware.RoleAuth(model.RoleAdmin), h.Calendar.ListCalendars)

			// 运行时配置模块
			settings := authorized.Group("/settings")
			{
				settings.GET("", h.Settings.GetSettings)
				settings.PUT("", middleware.RoleAuth(model.RoleAdmin), h.Settings.UpdateSettings)
			}

			// 导出模块
			authorized.GET("/export/shifts", h.Export.ExportShifts)
		}
	}

	return r
}
