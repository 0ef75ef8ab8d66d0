package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// actor is the authenticated caller, unpacked from the JWT middleware.
type actor struct {
	ID           string
	Email        string
	Name         string
	Role         string
	UniversityID string
}

func currentActor(c *gin.Context) actor {
	return actor{
		ID:           c.GetString("userID"),
		Email:        c.GetString("email"),
		Name:         c.GetString("userName"),
		Role:         c.GetString("role"),
		UniversityID: c.GetString("universityID"),
	}
}

// pageParams reads page/limit query params with the usual bounds.
func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
