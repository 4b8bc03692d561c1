// Package http holds the composition types shared by cmd/api, the router
// and the bounded-context modules.
package http

import "github.com/gin-gonic/gin"

// Module is a bounded context that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext carries the groups modules mount on. Protected requires a
// valid bearer token; Admin additionally requires the admin role and lives
// under /api/v1/admin.
type RouterContext struct {
	Protected *gin.RouterGroup
	Admin     *gin.RouterGroup
}
