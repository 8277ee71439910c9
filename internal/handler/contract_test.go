package handler_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/leadership-assessment-api/internal/models"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()

	schemaPath, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func validateContract(t *testing.T, schema *jsonschema.Schema, raw []byte) {
	t.Helper()

	var payload interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.NoError(t, schema.Validate(payload))
}

func TestAssessmentResultContract(t *testing.T) {
	app, _ := setupApp(t)
	schema := compileSchema(t, "assessment_result.schema.json")

	status, env := request(t, app, fiber.MethodPost, "/api/v1/assessments/tki/submit", tkiBody("BBBBBBBBBBBBBBBBBBBBBBBBBBBBBB"), asUser(1, "user"))
	require.Equal(t, fiber.StatusCreated, status)
	validateContract(t, schema, env.raw)

	status, env = request(t, app, fiber.MethodPost, "/api/v1/assessments/wellness/submit",
		map[string]interface{}{"answers": answers(1, 30, 2)}, asUser(1, "user"))
	require.Equal(t, fiber.StatusCreated, status)
	validateContract(t, schema, env.raw)
}

func TestResultsOverviewContract(t *testing.T) {
	app, db := setupApp(t)
	schema := compileSchema(t, "results_overview.schema.json")
	seedPlan(t, db, 3, models.PlanPro)

	status, env := request(t, app, fiber.MethodGet, "/api/v1/results/overview", nil, asUser(3, "user"))
	require.Equal(t, fiber.StatusOK, status)
	validateContract(t, schema, env.raw)

	status, _ = request(t, app, fiber.MethodPost, "/api/v1/evaluators",
		map[string]interface{}{"name": "Sam", "relationship": "manager"}, asUser(3, "user"))
	require.Equal(t, fiber.StatusCreated, status)

	var evaluator models.Evaluator
	require.NoError(t, db.Where("subject_id = ?", 3).First(&evaluator).Error)
	status, _ = request(t, app, fiber.MethodPost, "/api/v1/feedback/"+evaluator.Token,
		map[string]interface{}{"answers": answers(1, 30, 5), "comment": "clear goals"}, nil)
	require.Equal(t, fiber.StatusCreated, status)

	status, env = request(t, app, fiber.MethodGet, "/api/v1/results/overview", nil, asUser(3, "user"))
	require.Equal(t, fiber.StatusOK, status)
	validateContract(t, schema, env.raw)
	require.NotContains(t, string(env.raw), "clear goals")
}

func TestErrorContract(t *testing.T) {
	app, _ := setupApp(t)
	schema := compileSchema(t, "error.schema.json")

	status, env := request(t, app, fiber.MethodPost, "/api/v1/assessments/tki/submit", tkiBody("ABABABABAB"), asUser(1, "user"))
	require.Equal(t, fiber.StatusBadRequest, status)
	validateContract(t, schema, env.raw)

	status, env = request(t, app, fiber.MethodGet, "/api/v1/feedback/unknown", nil, nil)
	require.Equal(t, fiber.StatusNotFound, status)
	validateContract(t, schema, env.raw)
}
