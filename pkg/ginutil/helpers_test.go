package ginutil

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestQueryInt(t *testing.T) {
	c := testContext("/?page=3&bad=x")
	assert.Equal(t, 3, QueryInt(c, "page", 1))
	assert.Equal(t, 7, QueryInt(c, "bad", 7))
	assert.Equal(t, 9, QueryInt(c, "missing", 9))
}

func TestPageParams(t *testing.T) {
	page, perPage := PageParams(testContext("/?page=2&per_page=30"), 12)
	assert.Equal(t, 2, page)
	assert.Equal(t, 30, perPage)

	page, perPage = PageParams(testContext("/"), 12)
	assert.Equal(t, 1, page)
	assert.Equal(t, 12, perPage)
}
