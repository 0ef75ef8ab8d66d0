package routes

import (
	"admissions-api/controllers"
	"admissions-api/middleware"
	"admissions-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)
			public.POST("/student/login", controllers.StudentLogin)
			public.POST("/student/register", controllers.StudentRegister)

			// Public university pages
			public.GET("/universities", controllers.PublicUniversities)
			public.GET("/universities/:code", controllers.GetUniversityInfo)
			public.GET("/universities/:code/registration-config", controllers.GetRegistrationConfig)

			// Inbound integrations
			public.POST("/webhooks/leads", controllers.LeadImportWebhook)
			public.POST("/webhooks/razorpay", controllers.RazorpayWebhook)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Admissions API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Profile
			protected.GET("/me", controllers.GetMe)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Super admin: platform management
			platform := protected.Group("/platform", middleware.RequireRole(models.RoleSuperAdmin))
			{
				platform.POST("/universities", controllers.CreateUniversity)
				platform.GET("/universities", controllers.ListUniversities)
				platform.GET("/universities/:id", controllers.GetUniversity)
				platform.PUT("/universities/:id", controllers.UpdateUniversity)
				platform.POST("/universities/:id/admins", controllers.CreateUniversityAdmin)
				platform.GET("/stats", controllers.PlatformStats)
				platform.GET("/email-logs", controllers.ListEmailLogs)
				platform.GET("/payments-overview", controllers.PaymentsOverview)
			}

			// University admin: tenant settings and staff
			admin := protected.Group("/admin", middleware.RequireRole(models.RoleUniversityAdmin))
			{
				admin.GET("/settings", controllers.GetRegistrationSettings)
				admin.PUT("/settings/registration", controllers.UpdateRegistrationConfig)
				admin.PUT("/profile", controllers.UpdateUniversityProfile)
				admin.POST("/gallery", controllers.UploadGalleryImage)
				admin.DELETE("/gallery", controllers.DeleteGalleryImage)

				admin.POST("/staff", controllers.CreateStaff)
				admin.GET("/staff", controllers.ListStaff)
				admin.PUT("/staff/:id/password", controllers.ResetStaffPassword)
			}

			// Catalog: departments, courses, sessions
			catalog := protected.Group("/catalog")
			{
				catalog.GET("/departments", controllers.ListDepartments)
				catalog.GET("/courses", controllers.ListCourses)
				catalog.GET("/sessions", controllers.ListSessions)

				manage := catalog.Group("", middleware.RequireRole(models.RoleUniversityAdmin))
				{
					manage.POST("/departments", controllers.CreateDepartment)
					manage.PUT("/departments/:id", controllers.UpdateDepartment)
					manage.POST("/courses", controllers.CreateCourse)
					manage.PUT("/courses/:id", controllers.UpdateCourse)
					manage.POST("/sessions", controllers.CreateSession)
					manage.PUT("/sessions/:id", controllers.UpdateSession)
				}
			}

			// Leads CRM (staff only)
			staffRoles := []string{models.RoleUniversityAdmin, models.RoleCounsellingManager, models.RoleCounsellor}
			leads := protected.Group("/leads", middleware.RequireRole(staffRoles...))
			{
				leads.POST("", controllers.CreateLead)
				leads.GET("", controllers.ListLeads)
				leads.GET("/:id", controllers.GetLead)
				leads.PUT("/:id/stage", controllers.UpdateLeadStage)
				leads.POST("/:id/notes", controllers.AddLeadNote)
				leads.POST("/:id/follow-ups", controllers.AddFollowUp)
				leads.PUT("/:id/follow-ups/:followUpId/complete", controllers.CompleteFollowUp)

				// Assignment is a manager/admin action
				assign := leads.Group("", middleware.RequireRole(models.RoleUniversityAdmin, models.RoleCounsellingManager))
				{
					assign.PUT("/:id/assign", controllers.AssignLead)
					assign.POST("/bulk-reassign", controllers.BulkReassignLeads)
					assign.POST("/bulk-upload", controllers.BulkUploadLeads)
					assign.POST("/import/shiksha", controllers.ImportShikshaLeads)
					assign.POST("/import/collegedunia", controllers.ImportCollegeduniaLeads)
				}
			}

			// Applications: staff review
			applications := protected.Group("/applications", middleware.RequireRole(staffRoles...))
			{
				applications.GET("", controllers.ListApplications)
				applications.GET("/:id", controllers.GetApplication)
				applications.GET("/:id/documents", controllers.GetApplicationDocuments)
				applications.POST("/:id/review",
					middleware.RequireRole(models.RoleUniversityAdmin, models.RoleCounsellingManager),
					controllers.ReviewApplication)
			}

			// Entrance test administration
			tests := protected.Group("/tests", middleware.RequireRole(models.RoleUniversityAdmin))
			{
				tests.POST("/questions", controllers.CreateQuestion)
				tests.GET("/questions", controllers.ListQuestions)
				tests.PUT("/questions/:id", controllers.UpdateQuestion)
				tests.POST("/configs", controllers.CreateTestConfig)
				tests.GET("/configs", controllers.ListTestConfigs)
			}

			// Documents: staff verification
			documents := protected.Group("/documents", middleware.RequireRole(staffRoles...))
			{
				documents.PUT("/:id/verify", controllers.VerifyDocument)
			}

			// Payments: staff view and refunds
			payments := protected.Group("/payments", middleware.RequireRole(models.RoleUniversityAdmin, models.RoleCounsellingManager))
			{
				payments.GET("", controllers.ListPayments)
				payments.POST("/:id/refund",
					middleware.RequireRole(models.RoleUniversityAdmin),
					controllers.InitiateRefund)
			}

			// Queries: staff side
			queries := protected.Group("/queries")
			{
				queries.GET("/assigned",
					middleware.RequireRole(models.RoleCounsellor),
					controllers.GetAssignedQueries)
				queries.GET("",
					middleware.RequireRole(models.RoleUniversityAdmin, models.RoleCounsellingManager),
					controllers.ListQueries)
				queries.GET("/:id", middleware.RequireRole(staffRoles...), controllers.GetQuery)
				queries.POST("/:id/reply", middleware.RequireRole(staffRoles...), controllers.ReplyToQuery)
				queries.PUT("/:id/status", middleware.RequireRole(staffRoles...), controllers.UpdateQueryStatus)
			}

			// Dashboards
			dashboard := protected.Group("/dashboard")
			{
				dashboard.GET("/counselling",
					middleware.RequireRole(models.RoleUniversityAdmin, models.RoleCounsellingManager),
					controllers.CounsellingDashboard)
				dashboard.GET("/counsellor",
					middleware.RequireRole(models.RoleCounsellor),
					controllers.CounsellorDashboard)
			}

			// Student portal
			student := protected.Group("/student", middleware.RequireRole(models.RoleStudent))
			{
				student.POST("/application", controllers.CreateApplication)
				student.GET("/application", controllers.GetMyApplication)
				student.PUT("/application/basic-info", controllers.UpdateBasicInfo)
				student.PUT("/application/educational-details", controllers.UpdateEducationalDetails)
				student.PUT("/application/course", controllers.UpdateCourseSelection)
				student.POST("/application/submit", controllers.SubmitApplication)

				student.POST("/documents", controllers.UploadDocument)
				student.GET("/documents", controllers.GetMyDocuments)
				student.DELETE("/documents/:id", controllers.DeleteDocument)

				student.POST("/test/start", controllers.StartTest)
				student.POST("/test/:attemptId/submit", controllers.SubmitTest)

				student.POST("/payments/order", controllers.CreatePaymentOrder)
				student.POST("/payments/verify", controllers.VerifyPayment)
				student.GET("/payments", controllers.GetMyPayments)

				student.POST("/queries", controllers.CreateQuery)
				student.GET("/queries", controllers.GetMyQueries)
				student.GET("/queries/:id", controllers.GetQuery)
				student.POST("/queries/:id/reply", controllers.ReplyToQuery)
			}

			// Test results are readable by the student and by staff
			protected.GET("/tests/results/:attemptId", controllers.GetTestResult)
		}
	}

	// Uploaded files
	router.Static("/uploads", "./uploads")
}
