package rest

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/userdir/internal/common"
	"github.com/dmitrijs2005/userdir/internal/server/models"
	"github.com/gin-gonic/gin"
)

func bindError(err error) error {
	if errors.Is(err, io.EOF) {
		return common.NewError(common.ErrorBadRequest, "Request body is required")
	}
	return common.NewError(common.ErrorBadRequest, "%s", err.Error())
}

func parseID(c *gin.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewError(common.ErrorBadRequest, "Invalid id: %s", raw)
	}
	return id, nil
}

func (s *RESTServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (s *RESTServer) notFound(c *gin.Context) {
	respondError(c, http.StatusNotFound, "Route Not found", nil)
}

func (s *RESTServer) login(c *gin.Context) {
	var req models.LoginParams
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err))
		return
	}

	res, err := s.users.AuthenticateUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.setSessionCookie(c, res.AccessToken)
	s.logger.Info(c.Request.Context(), "Logged in", "user_id", res.UserID)
	c.JSON(http.StatusOK, res)
}

func (s *RESTServer) logout(c *gin.Context) {
	s.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (s *RESTServer) me(c *gin.Context) {
	id, ok := UserIDFromContext(c.Request.Context())
	if !ok {
		s.fail(c, common.NewError(common.ErrorUnauthorized, "You need to be Authenticated"))
		return
	}

	user, err := s.users.GetUserByID(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *RESTServer) createUser(c *gin.Context) {
	var req models.CreateUserParams
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err))
		return
	}

	user, err := s.users.CreateUser(c.Request.Context(), &req)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "User created", "user_id", user.ID)
	c.JSON(http.StatusCreated, user)
}

func (s *RESTServer) listUsers(c *gin.Context) {
	list, err := s.users.GetUsers(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *RESTServer) updateUser(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	var req models.UpdateUserParams
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, bindError(err))
		return
	}
	if req.Empty() {
		s.fail(c, common.NewError(common.ErrorBadRequest, "At least one field is required"))
		return
	}

	user, err := s.users.UpdateUser(c.Request.Context(), &req, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *RESTServer) deleteUser(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	user, err := s.users.DeleteUser(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "User deleted", "user_id", id)
	c.JSON(http.StatusOK, user)
}
