package middleware

import (
	"context"
	"net/http"
	"strconv"

	"modpaypal/internal/pkg/jwt"
	"modpaypal/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type courseTeacherChecker interface {
	IsTeacher(ctx context.Context, courseID, userID int64) (bool, error)
}

// RequireRole ensures that the authenticated user has the specified role
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.AbortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			return
		}

		if role.(string) != requiredRole {
			response.AbortError(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			return
		}

		c.Next()
	}
}

// AdminOnly middleware requires admin role
func AdminOnly() gin.HandlerFunc {
	return RequireRole(jwt.RoleAdmin)
}

// RequireCourseEditor lets admins and teachers of the course in URL param
// "courseId" through.
func RequireCourseEditor(teachers courseTeacherChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt64("user_id")
		if userID == 0 {
			response.AbortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}

		courseID, err := strconv.ParseInt(c.Param("courseId"), 10, 64)
		if err != nil || courseID <= 0 {
			response.AbortError(c, http.StatusBadRequest, "INVALID_ID", "Invalid course ID")
			return
		}

		if c.GetString("role") == jwt.RoleAdmin {
			c.Next()
			return
		}

		ok, err := teachers.IsTeacher(c.Request.Context(), courseID, userID)
		if err != nil {
			response.AbortError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to check course permissions")
			return
		}
		if !ok {
			response.AbortError(c, http.StatusForbidden, "FORBIDDEN", "You can't edit this course")
			return
		}

		c.Next()
	}
}
