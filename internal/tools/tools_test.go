package tools

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcompanion-server/internal/logger"
	"medcompanion-server/internal/metrics"
	"medcompanion-server/internal/models"
	"medcompanion-server/internal/reports"
	"medcompanion-server/internal/scheduling"
	"medcompanion-server/internal/store"
)

type stubResearcher struct {
	answer string
	err    error
}

func (s stubResearcher) Research(_ context.Context, query string) (string, error) {
	return s.answer + " " + query, s.err
}

type fixture struct {
	registry *Registry
	dir      string
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T, researcher Researcher) fixture {
	t.Helper()
	dir := t.TempDir()
	log := logger.Discard()
	m := metrics.New()
	ds := store.New(store.NewFileBackend(dir), store.WithLogger(log))
	require.NoError(t, ds.SaveDoctors(context.Background(), models.DoctorDirectory{
		"Dr. Smith": {Specialty: "Cardiology", FreeTime: []string{"Monday 10:00-12:00", "Monday 14:00-16:00"}},
	}))

	r := NewRegistry(log, m)
	Register(r, Deps{
		Scheduling: scheduling.NewService(ds, log, m),
		Reports:    reports.NewService(ds, dir, nil, log, m),
		Researcher: researcher,
	})
	return fixture{registry: r, dir: dir, metrics: m}
}

func (f fixture) invoke(t *testing.T, name, args string) map[string]any {
	t.Helper()
	res, err := f.registry.Invoke(context.Background(), name, []byte(args))
	require.NoError(t, err)
	raw, err := json.Marshal(res)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestRegistryHasEveryTool(t *testing.T) {
	f := newFixture(t, nil)
	want := []string{
		"list_doctors", "get_doctor_schedule", "book_appointment", "modify_appointment",
		"cancel_appointment", "list_appointments", "list_medical_reports", "get_reports_summary",
		"save_medical_report", "read_report", "analyze_past_checkups", "order_medicine",
		"call_family", "book_ambulance", "ask_user_for_clarification", "medical_research",
	}
	var got []string
	for _, tool := range f.registry.List() {
		got = append(got, tool.Name)
		assert.NotEmpty(t, tool.Description, tool.Name)
	}
	assert.Equal(t, want, got)
}

func TestToolParamsDescribeSchema(t *testing.T) {
	f := newFixture(t, nil)
	tool, ok := f.registry.Get("modify_appointment")
	require.True(t, ok)
	assert.Equal(t, []Param{
		{Name: "current_doctor_name", Type: "string", Required: true},
		{Name: "current_time_slot", Type: "string", Required: true},
		{Name: "new_doctor_name", Type: "string"},
		{Name: "new_time_slot", Type: "string"},
	}, tool.Params)

	tool, ok = f.registry.Get("list_doctors")
	require.True(t, ok)
	assert.Empty(t, tool.Params)
}

func TestBookingFlow(t *testing.T) {
	f := newFixture(t, nil)

	out := f.invoke(t, "book_appointment", `{"doctor_name":"Dr. Smith","time_slot":"Monday 10:00-12:00"}`)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, "Appointment confirmed with Dr. Smith for Monday 10:00-12:00.", out["message"])

	out = f.invoke(t, "book_appointment", `{"doctor_name":"Dr. Smith","time_slot":"Monday 10:00-12:00"}`)
	assert.Equal(t, "error", out["status"])
	assert.Equal(t, "conflict", out["error_kind"])

	out = f.invoke(t, "modify_appointment", `{"current_doctor_name":"Dr. Smith","current_time_slot":"Monday 10:00-12:00","new_time_slot":"Monday 14:00-16:00"}`)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, "Appointment updated to Dr. Smith at Monday 14:00-16:00.", out["message"])

	out = f.invoke(t, "list_appointments", "")
	require.Equal(t, "success", out["status"])
	assert.Len(t, out["appointments"], 1)

	out = f.invoke(t, "cancel_appointment", `{"doctor_name":"Dr. Smith","time_slot":"Monday 14:00-16:00"}`)
	assert.Equal(t, "success", out["status"])

	out = f.invoke(t, "list_appointments", "{}")
	assert.Equal(t, "No appointments found.", out["message"])

	rec := httptest.NewRecorder()
	f.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `medcompanion_tools_invocations_total{status="success",tool="book_appointment"} 1`)
	assert.Contains(t, rec.Body.String(), `medcompanion_tools_invocations_total{status="error",tool="book_appointment"} 1`)
}

func TestErrorKinds(t *testing.T) {
	f := newFixture(t, nil)
	tests := []struct {
		tool string
		args string
		kind string
	}{
		{"get_doctor_schedule", `{"doctor_name":"Dr. Who"}`, "not_found"},
		{"book_appointment", `{"doctor_name":"Dr. Smith","time_slot":"Sunday"}`, "invalid_slot"},
		{"cancel_appointment", `{"doctor_name":"Dr. Smith","time_slot":"Monday 10:00-12:00"}`, "not_found"},
		{"book_appointment", `{"doctor_name":"Dr. Smith"}`, "invalid_input"},
		{"book_appointment", `{"doctor_name":`, "invalid_input"},
		{"order_medicine", `{"medicine_name":"Aspirin","quantity":0}`, "invalid_input"},
		{"save_medical_report", `{"filename":"../escape.txt","content":"x"}`, "invalid_input"},
		{"read_report", `{"report_name":"sub/dir.txt"}`, "invalid_input"},
		{"read_report", `{"report_name":"missing.txt"}`, "not_found"},
		{"medical_research", `{"query":"gene therapy"}`, "unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.tool+"/"+tt.kind, func(t *testing.T) {
			out := f.invoke(t, tt.tool, tt.args)
			assert.Equal(t, "error", out["status"])
			assert.Equal(t, tt.kind, out["error_kind"])
			assert.NotEmpty(t, out["error_message"])
		})
	}
}

func TestReportTools(t *testing.T) {
	f := newFixture(t, nil)

	out := f.invoke(t, "save_medical_report", `{"filename":"checkup.txt","content":"Date: 2024-01-02\nDiagnosis: Flu\nRecommendation: Rest\nSymptoms: fever"}`)
	require.Equal(t, "success", out["status"])
	assert.Equal(t, "Report 'checkup.txt' saved and summarized.", out["message"])
	assert.Equal(t, map[string]any{
		"date": "2024-01-02", "diagnosis": "Flu", "medicines": "Rest", "other": "Symptoms: fever",
	}, out["summary"])

	out = f.invoke(t, "list_medical_reports", "")
	assert.Equal(t, []any{"checkup.txt"}, out["reports"])

	out = f.invoke(t, "get_reports_summary", "")
	assert.Len(t, out["summaries"], 1)

	out = f.invoke(t, "read_report", `{"report_name":"checkup.txt"}`)
	assert.Contains(t, out["content"], "Diagnosis: Flu")

	out = f.invoke(t, "analyze_past_checkups", `{"limit":5}`)
	require.Equal(t, "success", out["status"])
	analysis := out["analysis"].(map[string]any)
	assert.Equal(t, 1.0, analysis["reports_analyzed"])
	assert.Equal(t, []any{"Flu"}, analysis["diagnoses_history"])
}

func TestReadReportWithoutAnalyzer(t *testing.T) {
	f := newFixture(t, nil)
	pdf := append([]byte("%PDF-1.4\n"), make([]byte, 16)...)
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "scan.pdf"), pdf, 0o644))

	out := f.invoke(t, "read_report", `{"report_name":"scan.pdf"}`)
	assert.Equal(t, "unavailable", out["error_kind"])
}

func TestSimulatedServices(t *testing.T) {
	f := newFixture(t, nil)

	out := f.invoke(t, "order_medicine", `{"medicine_name":"Aspirin","quantity":2}`)
	assert.Equal(t, "Order placed for 2 units of Aspirin. Delivery expected in 2 days.", out["message"])

	out = f.invoke(t, "call_family", `{"contact_name":"Mom"}`)
	assert.Equal(t, "Calling Mom with message: Emergency", out["message"])

	out = f.invoke(t, "book_ambulance", `{"location":"Home","urgency":"Low"}`)
	assert.Equal(t, "Ambulance dispatched to Home. Urgency: Low", out["message"])

	out = f.invoke(t, "ask_user_for_clarification", `{"question":"What was the date?"}`)
	assert.Equal(t, "waiting_for_input", out["status"])
	assert.Equal(t, "What was the date?", out["question"])
}

func TestMedicalResearch(t *testing.T) {
	f := newFixture(t, stubResearcher{answer: "findings for"})
	out := f.invoke(t, "medical_research", `{"query":"gene therapy"}`)
	require.Equal(t, "success", out["status"])
	assert.Equal(t, "findings for gene therapy", out["findings"])

	f = newFixture(t, stubResearcher{err: errors.New("quota exceeded")})
	out = f.invoke(t, "medical_research", `{"query":"gene therapy"}`)
	assert.Equal(t, "unavailable", out["error_kind"])
	assert.Contains(t, out["error_message"], "quota exceeded")
}

func TestInvokeUnknownTool(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.registry.Invoke(context.Background(), "launch_rocket", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
	_, err = f.registry.Invoke(context.Background(), "launch_rocket_2", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)

	rec := httptest.NewRecorder()
	f.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `medcompanion_tools_invocations_total{status="error",tool="unknown"} 2`)
	assert.NotContains(t, rec.Body.String(), "launch_rocket")
}

func TestResultMarshalling(t *testing.T) {
	raw, err := json.Marshal(Failure(models.ErrConflict))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"error","error_kind":"conflict","error_message":"slot already booked"}`, string(raw))

	raw, err = json.Marshal(Success(Fields{"status": "ignored", "n": 1}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","n":1}`, string(raw))
}

func TestSaveReportCannotReplaceDatasets(t *testing.T) {
	f := newFixture(t, nil)
	out := f.invoke(t, "book_appointment", `{"doctor_name":"Dr. Smith","time_slot":"Monday 10:00-12:00"}`)
	require.Equal(t, "success", out["status"])

	for _, name := range []string{"appointments.json", "doctors.json", "reports_summary.json", "Appointments.JSON"} {
		out = f.invoke(t, "save_medical_report", `{"filename":"`+name+`","content":"Diagnosis: Flu"}`)
		assert.Equal(t, "invalid_input", out["error_kind"], name)
	}

	out = f.invoke(t, "list_appointments", "")
	assert.Len(t, out["appointments"], 1)
	out = f.invoke(t, "list_doctors", "")
	assert.Len(t, out["doctors"], 1)
}

func TestSaveReportAcceptsDottedNames(t *testing.T) {
	f := newFixture(t, nil)

	out := f.invoke(t, "save_medical_report", `{"filename":"scan..v2.txt","content":"Diagnosis: Flu"}`)
	require.Equal(t, "success", out["status"])

	out = f.invoke(t, "read_report", `{"report_name":"scan..v2.txt"}`)
	assert.Equal(t, "Diagnosis: Flu", out["content"])

	for _, name := range []string{"..", ".", `..\\evil.txt`, "a/b.txt"} {
		out = f.invoke(t, "save_medical_report", `{"filename":"`+name+`","content":"x"}`)
		assert.Equal(t, "invalid_input", out["error_kind"], name)
	}
}
