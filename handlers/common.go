package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/TwoX-In/GenAI-Hackathon/db"
	"github.com/TwoX-In/GenAI-Hackathon/models"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type Response struct {
	Error string `json:"error"`
}

var (
	// Predefined errors
	OKResponse        = Response{}
	BadIDResponse     = Response{"invalid product id"}
	NotFoundResponse  = Response{"product not found"}
	DBError1Response  = Response{"DB Error 1"}
	DBError2Response  = Response{"DB Error 2"}
	NoSessionResponse = Response{"no session"}
)

// productID parses the :id path parameter, writing a 400 when it is not a uid
func productID(c *gin.Context) (uint32, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, BadIDResponse)
		return 0, false
	}
	return uint32(id), true
}

func stateSession(c *gin.Context) (*db.Session, bool) {
	s, err := db.FromContext(c)
	if err != nil {
		log.Errorf("Handler %s: %v", c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, NoSessionResponse)
		return nil, false
	}
	return s, true
}

// readError maps a failed read to 404 or 500
func readError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return
	}
	log.Errorf("DB read error on %s: %v", c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, DBError1Response)
}

func queryInt(c *gin.Context, name string, def, max int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 0 {
		return def
	}
	if max > 0 && v > max {
		return max
	}
	return v
}
