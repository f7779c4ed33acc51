package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")

	profiles := api.Group("/profiles", s.middleware.JWT.OptionalJWT())
	profiles.GET("", s.searchProfiles)
	profiles.GET("/:handle", s.viewProfile)

	protected := api.Group("")
	protected.Use(s.middleware.JWT.RequireJWT())

	connections := protected.Group("/connections")
	connections.GET("", s.listConnections)
	connections.GET("/pending", s.listPendingRequests)
	connections.GET("/sent", s.listSentRequests)
	connections.GET("/stats", s.connectionStats)
	connections.GET("/status/:user_id", s.connectionStatus)

	limit := s.middleware.RateLimit.Handler()
	connections.POST("", s.sendFriendRequest, limit)
	connections.PUT("/:id/accept", s.acceptFriendRequest, limit)
	connections.PUT("/:id/reject", s.rejectFriendRequest, limit)
	connections.DELETE("/:id", s.removeConnection, limit)

	users := protected.Group("/users")
	users.GET("/:id/connections", s.listUserConnections)
}
