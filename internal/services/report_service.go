package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"worklog-backend/internal/apperr"
	"worklog-backend/internal/models"
	"worklog-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// ReportService renders a work log as a printable PDF for the site file.
type ReportService struct {
	Logs      WorkLogStore
	Employees EmployeeStore
}

func NewReportService(logs WorkLogStore, employees EmployeeStore) *ReportService {
	return &ReportService{Logs: logs, Employees: employees}
}

// WorkLogPDF generates the PDF for one log. Visibility follows the same
// scope as Get: the owner and managers.
func (s *ReportService) WorkLogPDF(ctx context.Context, actor models.Actor, id int) ([]byte, error) {
	wl, err := s.Logs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsManager() && wl.TeamLeaderID != actor.ID {
		return nil, apperr.Authorization("work log %d belongs to another team leader", id)
	}

	crew, err := s.crewNames(ctx, wl.EmployeeIDs)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Daily Work Log", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// General information
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "General Information", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Date: %s", wl.LogDate.Format(timeutil.DisplayLayout)), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Status: %s", wl.Status), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Project: %s", wl.ProjectName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Team Leader: %s", wl.TeamLeaderName), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Hours: %s - %s", wl.StartTime, wl.EndTime), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Weather: %s", wl.Weather), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	// Crew
	if len(crew) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 8, "Crew", "1", 1, "L", true, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(190, 6, strings.Join(crew, ", "), "LRB", "L", false)
		pdf.Ln(5)
	}

	// Free text sections
	s.textSection(pdf, "Work Performed", wl.WorkDescription)
	s.textSection(pdf, "Issues Encountered", wl.IssuesEncountered)
	s.textSection(pdf, "Next Steps", wl.NextSteps)

	// Materials table
	if len(wl.MaterialsUsed) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 8, "Materials Used", "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(70, 7, "Material", "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 7, "Quantity", "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 7, "Unit", "1", 0, "C", true, 0, "")
		pdf.CellFormat(60, 7, "Notes", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, m := range wl.MaterialsUsed {
			pdf.CellFormat(70, 6, m.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", m.Quantity), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, m.Unit, "1", 0, "C", false, 0, "")
			pdf.CellFormat(60, 6, m.Notes, "1", 1, "L", false, 0, "")
		}
		pdf.Ln(5)
		pdf.SetFillColor(240, 240, 240)
	}

	// Attached documents
	if len(wl.Documents) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 8, "Documents", "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(90, 7, "File", "1", 0, "C", true, 0, "")
		pdf.CellFormat(50, 7, "Kind", "1", 0, "C", true, 0, "")
		pdf.CellFormat(50, 7, "Uploaded", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, d := range wl.Documents {
			pdf.CellFormat(90, 6, d.OriginalName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(50, 6, d.Kind, "1", 0, "C", false, 0, "")
			pdf.CellFormat(50, 6, d.UploadedAt.Format("02-Jan-2006"), "1", 1, "C", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperr.Storage(err, "render work log pdf")
	}
	return buf.Bytes(), nil
}

func (s *ReportService) textSection(pdf *gofpdf.Fpdf, title, text string) {
	if text == "" {
		return
	}
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, title, "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(190, 6, text, "LRB", "L", false)
	pdf.Ln(5)
}

func (s *ReportService) crewNames(ctx context.Context, ids []int) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	employees, err := s.Employees.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]string, len(employees))
	for _, e := range employees {
		byID[e.ID] = e.FullName
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		}
	}
	return names, nil
}
