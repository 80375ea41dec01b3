package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"medcompanion-server/internal/models"
	"medcompanion-server/internal/reports"
	"medcompanion-server/internal/scheduling"
	"medcompanion-server/internal/store"
)

// Researcher answers free-text questions about treatments and ongoing research
type Researcher interface {
	Research(ctx context.Context, query string) (string, error)
}

// Deps are the services the built-in tools call into. Researcher may be nil.
type Deps struct {
	Scheduling *scheduling.Service
	Reports    *reports.Service
	Researcher Researcher
}

// Register adds every built-in tool to r
func Register(r *Registry, deps Deps) {
	registerScheduling(r, deps.Scheduling)
	registerReports(r, deps.Reports)
	registerServices(r)
	registerResearch(r, deps.Researcher)
}

type noArgs struct{}

type doctorArgs struct {
	DoctorName string `json:"doctor_name" validate:"required"`
}

type slotArgs struct {
	DoctorName string `json:"doctor_name" validate:"required"`
	TimeSlot   string `json:"time_slot" validate:"required"`
}

type modifyArgs struct {
	CurrentDoctorName string `json:"current_doctor_name" validate:"required"`
	CurrentTimeSlot   string `json:"current_time_slot" validate:"required"`
	NewDoctorName     string `json:"new_doctor_name,omitempty"`
	NewTimeSlot       string `json:"new_time_slot,omitempty"`
}

func registerScheduling(r *Registry, svc *scheduling.Service) {
	r.Register(newTool("list_doctors",
		"Lists all available doctors with their specialties and available appointment slots.",
		func(ctx context.Context, _ noArgs) (Result, error) {
			doctors, err := svc.Doctors(ctx)
			if err != nil {
				return Result{}, err
			}
			fields := Fields{"doctors": doctors}
			if len(doctors) == 0 {
				fields["message"] = "No doctors found."
			}
			return Success(fields), nil
		}))

	r.Register(newTool("get_doctor_schedule",
		"Retrieves the schedule and specialty for a specified doctor.",
		func(ctx context.Context, args doctorArgs) (Result, error) {
			doc, err := svc.DoctorSchedule(ctx, args.DoctorName)
			if err != nil {
				return Result{}, err
			}
			return Success(Fields{
				"doctor":          doc.Name,
				"specialty":       doc.Specialty,
				"available_slots": doc.AvailableSlots,
			}), nil
		}))

	r.Register(newTool("book_appointment",
		"Books an appointment with a doctor at a specific time slot.",
		func(ctx context.Context, args slotArgs) (Result, error) {
			appt, err := svc.Book(ctx, args.DoctorName, args.TimeSlot)
			if err != nil {
				return Result{}, err
			}
			return Success(Fields{
				"message":     fmt.Sprintf("Appointment confirmed with %s for %s.", appt.Doctor, appt.TimeSlot),
				"appointment": appt,
			}), nil
		}))

	r.Register(newTool("modify_appointment",
		"Moves an existing appointment to a new doctor and/or time slot. Omitted values keep the current ones.",
		func(ctx context.Context, args modifyArgs) (Result, error) {
			appt, err := svc.Modify(ctx, scheduling.ModifyRequest{
				CurrentDoctor:   args.CurrentDoctorName,
				CurrentTimeSlot: args.CurrentTimeSlot,
				NewDoctor:       args.NewDoctorName,
				NewTimeSlot:     args.NewTimeSlot,
			})
			if err != nil {
				return Result{}, err
			}
			return Success(Fields{
				"message":     fmt.Sprintf("Appointment updated to %s at %s.", appt.Doctor, appt.TimeSlot),
				"appointment": appt,
			}), nil
		}))

	r.Register(newTool("cancel_appointment",
		"Cancels an existing appointment.",
		func(ctx context.Context, args slotArgs) (Result, error) {
			if err := svc.Cancel(ctx, args.DoctorName, args.TimeSlot); err != nil {
				return Result{}, err
			}
			return Success(Fields{"message": "Appointment cancelled successfully."}), nil
		}))

	r.Register(newTool("list_appointments",
		"Lists all currently booked appointments.",
		func(ctx context.Context, _ noArgs) (Result, error) {
			appts, err := svc.List(ctx)
			if err != nil {
				return Result{}, err
			}
			fields := Fields{"appointments": appts}
			if len(appts) == 0 {
				fields["message"] = "No appointments found."
			}
			return Success(fields), nil
		}))
}

type saveReportArgs struct {
	Filename string `json:"filename" validate:"required"`
	Content  string `json:"content"`
}

type readReportArgs struct {
	ReportName string `json:"report_name" validate:"required"`
}

type checkupArgs struct {
	Limit int `json:"limit" validate:"gte=0"`
}

func registerReports(r *Registry, svc *reports.Service) {
	r.Register(newTool("list_medical_reports",
		"Lists the names of all stored text medical reports.",
		func(ctx context.Context, _ noArgs) (Result, error) {
			names, err := svc.ListReportFiles(ctx)
			if err != nil {
				return Result{}, err
			}
			return Success(Fields{"reports": names}), nil
		}))

	r.Register(newTool("get_reports_summary",
		"Retrieves the structured summary of every saved medical report.",
		func(ctx context.Context, _ noArgs) (Result, error) {
			summaries, err := svc.Summaries(ctx)
			if err != nil {
				return Result{}, err
			}
			return Success(Fields{"summaries": summaries}), nil
		}))

	r.Register(newTool("save_medical_report",
		"Saves a new medical report and updates the summary index. Use only after the user confirmed the summary.",
		func(ctx context.Context, args saveReportArgs) (Result, error) {
			if err := checkFilename(args.Filename); err != nil {
				return Result{}, err
			}
			summary, err := svc.SaveReport(ctx, args.Filename, args.Content)
			if err != nil {
				return Result{}, err
			}
			return Success(Fields{
				"message": fmt.Sprintf("Report '%s' saved and summarized.", args.Filename),
				"summary": summary,
			}), nil
		}))

	r.Register(newTool("read_report",
		"Reads the full content of a medical report. Text is returned as stored; images and PDFs are transcribed.",
		func(ctx context.Context, args readReportArgs) (Result, error) {
			if err := checkFilename(args.ReportName); err != nil {
				return Result{}, err
			}
			content, err := svc.ReadReport(ctx, args.ReportName)
			if err != nil {
				return Result{}, err
			}
			return Success(Fields{"content": content}), nil
		}))

	r.Register(newTool("analyze_past_checkups",
		"Analyzes the most recent report summaries (default 3) to surface diagnosis, symptom and medicine history.",
		func(ctx context.Context, args checkupArgs) (Result, error) {
			analysis, err := svc.AnalyzePastCheckups(ctx, args.Limit)
			if err != nil {
				return Result{}, err
			}
			return Success(Fields{"analysis": analysis}), nil
		}))
}

// checkFilename keeps report names inside the report directory and away
// from the dataset documents stored next to them
func checkFilename(name string) error {
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." || filepath.Base(name) != name {
		return fmt.Errorf("%w: report name %q must be a plain file name", models.ErrInvalidInput, name)
	}
	if store.IsDatasetFile(name) {
		return fmt.Errorf("%w: report name %q is reserved for a dataset", models.ErrInvalidInput, name)
	}
	return nil
}

type orderArgs struct {
	MedicineName string `json:"medicine_name" validate:"required"`
	Quantity     int    `json:"quantity" validate:"min=1"`
}

type callArgs struct {
	ContactName string `json:"contact_name" validate:"required"`
	Message     string `json:"message,omitempty"`
}

type ambulanceArgs struct {
	Location string `json:"location" validate:"required"`
	Urgency  string `json:"urgency,omitempty"`
}

type clarificationArgs struct {
	Question string `json:"question" validate:"required"`
}

// registerServices adds the simulated outside services. None of them has
// side effects.
func registerServices(r *Registry) {
	r.Register(newTool("order_medicine",
		"Orders a specified quantity of a medicine.",
		func(_ context.Context, args orderArgs) (Result, error) {
			return Success(Fields{
				"message": fmt.Sprintf("Order placed for %d units of %s. Delivery expected in 2 days.", args.Quantity, args.MedicineName),
			}), nil
		}))

	r.Register(newTool("call_family",
		"Calls a family member with a message (default \"Emergency\").",
		func(_ context.Context, args callArgs) (Result, error) {
			msg := args.Message
			if msg == "" {
				msg = "Emergency"
			}
			return Success(Fields{
				"message": fmt.Sprintf("Calling %s with message: %s", args.ContactName, msg),
			}), nil
		}))

	r.Register(newTool("book_ambulance",
		"Dispatches an ambulance to a location (default urgency \"High\").",
		func(_ context.Context, args ambulanceArgs) (Result, error) {
			urgency := args.Urgency
			if urgency == "" {
				urgency = "High"
			}
			return Success(Fields{
				"message": fmt.Sprintf("Ambulance dispatched to %s. Urgency: %s", args.Location, urgency),
			}), nil
		}))

	r.Register(newTool("ask_user_for_clarification",
		"Asks the user a clarifying question about a report before it is saved.",
		func(_ context.Context, args clarificationArgs) (Result, error) {
			return WaitingForInput(Fields{"question": args.Question}), nil
		}))
}

type researchArgs struct {
	Query string `json:"query" validate:"required"`
}

func registerResearch(r *Registry, researcher Researcher) {
	r.Register(newTool("medical_research",
		"Searches for new treatments, cures and clinical trials, especially for rare diseases.",
		func(ctx context.Context, args researchArgs) (Result, error) {
			if researcher == nil {
				return Result{}, fmt.Errorf("%w: medical research is not configured (set GOOGLE_API_KEY)", models.ErrUnavailable)
			}
			findings, err := researcher.Research(ctx, args.Query)
			if err != nil {
				return Result{}, fmt.Errorf("%w: %w", models.ErrUnavailable, err)
			}
			return Success(Fields{"query": args.Query, "findings": findings}), nil
		}))
}
