package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agroplan/agroplan-api/internal/constants"
	"github.com/agroplan/agroplan-api/internal/database"
	"github.com/agroplan/agroplan-api/internal/models"
)

// FieldHandlerTestSuite defines the test suite for FieldHandler
type FieldHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *FieldHandler
	company *models.Company
	user    *models.User
}

// SetupTest runs before each test
func (suite *FieldHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Field{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	suite.handler = NewFieldHandler()

	gin.SetMode(gin.TestMode)

	suite.company = &models.Company{Name: "Test Farm"}
	suite.Require().NoError(suite.db.Create(suite.company).Error)

	suite.user = &models.User{
		Email:     "agronomist@example.com",
		CompanyID: suite.company.ID,
		Enabled:   true,
	}
	suite.Require().NoError(suite.db.Create(suite.user).Error)
}

// TearDownTest runs after each test
func (suite *FieldHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *FieldHandlerTestSuite) createAuthContext(method, url string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, suite.user.ID)
	c.Set(constants.ContextKeyCompanyID, suite.company.ID)
	c.Set(constants.ContextKeyRole, "admin")

	return c, w
}

func (suite *FieldHandlerTestSuite) createTestField(name string, companyID uuid.UUID) *models.Field {
	field := &models.Field{
		Name:      name,
		AreaHa:    10,
		CompanyID: companyID,
		Enabled:   true,
	}
	suite.Require().NoError(suite.db.Create(field).Error)
	return field
}

// TestListFields_Success tests listing with the pagination envelope
func (suite *FieldHandlerTestSuite) TestListFields_Success() {
	suite.createTestField("North Lot", suite.company.ID)
	suite.createTestField("South Lot", suite.company.ID)

	c, w := suite.createAuthContext("GET", "/api/fields", nil)

	suite.handler.ListFields(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Contains(suite.T(), response, "fields")
	assert.Contains(suite.T(), response, "pagination")

	fields := response["fields"].([]interface{})
	assert.Len(suite.T(), fields, 2)
}

// TestListFields_TenantScoped tests that another company's fields stay
// invisible
func (suite *FieldHandlerTestSuite) TestListFields_TenantScoped() {
	suite.createTestField("Mine", suite.company.ID)

	other := &models.Company{Name: "Other Farm"}
	suite.Require().NoError(suite.db.Create(other).Error)
	suite.createTestField("Theirs", other.ID)

	c, w := suite.createAuthContext("GET", "/api/fields", nil)

	suite.handler.ListFields(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	fields := response["fields"].([]interface{})
	suite.Require().Len(fields, 1)
	first := fields[0].(map[string]interface{})
	assert.Equal(suite.T(), "Mine", first["name"])
}

// TestListFields_ExcludesDisabled tests the default listing hides
// disabled fields
func (suite *FieldHandlerTestSuite) TestListFields_ExcludesDisabled() {
	suite.createTestField("Visible", suite.company.ID)
	hidden := suite.createTestField("Hidden", suite.company.ID)
	suite.db.Model(hidden).Update("enabled", false)

	c, w := suite.createAuthContext("GET", "/api/fields", nil)

	suite.handler.ListFields(c)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	fields := response["fields"].([]interface{})
	assert.Len(suite.T(), fields, 1)
}

// TestCreateField_Success tests field creation
func (suite *FieldHandlerTestSuite) TestCreateField_Success() {
	requestBody := map[string]interface{}{
		"name":    "New Lot",
		"area_ha": 25.5,
		"crop":    "soybean",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/fields", body)

	suite.handler.CreateField(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response models.Field
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "New Lot", response.Name)
	assert.Equal(suite.T(), suite.company.ID, response.CompanyID)
	assert.True(suite.T(), response.Enabled)
}

// TestCreateField_MissingName tests validation
func (suite *FieldHandlerTestSuite) TestCreateField_MissingName() {
	body, _ := json.Marshal(map[string]interface{}{"area_ha": 10})

	c, w := suite.createAuthContext("POST", "/api/fields", body)

	suite.handler.CreateField(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestUpdateField_Success tests a partial update
func (suite *FieldHandlerTestSuite) TestUpdateField_Success() {
	field := suite.createTestField("Old Name", suite.company.ID)

	requestBody := map[string]interface{}{
		"name": "New Name",
		"crop": "maize",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PATCH", "/api/fields/"+field.ID.String(), body)
	c.Params = gin.Params{{Key: "id", Value: field.ID.String()}}

	suite.handler.UpdateField(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response models.Field
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "New Name", response.Name)
	assert.Equal(suite.T(), "maize", response.Crop)
	assert.Equal(suite.T(), 10.0, response.AreaHa)
}

// TestDeleteAndEnableField tests the soft-delete round trip
func (suite *FieldHandlerTestSuite) TestDeleteAndEnableField() {
	field := suite.createTestField("To Disable", suite.company.ID)

	c, w := suite.createAuthContext("DELETE", "/api/fields/"+field.ID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: field.ID.String()}}
	suite.handler.DeleteField(c)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var stored models.Field
	suite.Require().NoError(suite.db.First(&stored, "id = ?", field.ID).Error)
	assert.False(suite.T(), stored.Enabled)

	c, w = suite.createAuthContext("PUT", "/api/fields/enable/"+field.ID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: field.ID.String()}}
	suite.handler.EnableField(c)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	suite.Require().NoError(suite.db.First(&stored, "id = ?", field.ID).Error)
	assert.True(suite.T(), stored.Enabled)
}

// TestDeleteField_NotFound tests disabling an unknown id
func (suite *FieldHandlerTestSuite) TestDeleteField_NotFound() {
	id := uuid.New()
	c, w := suite.createAuthContext("DELETE", "/api/fields/"+id.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	suite.handler.DeleteField(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestSuite runs the test suite
func TestFieldHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(FieldHandlerTestSuite))
}
