package businessflow

import (
	"fmt"
	"time"

	"github.com/amirphl/mailwright/app/dto"
	"github.com/amirphl/mailwright/models"
	"github.com/amirphl/mailwright/utils"
	"github.com/xuri/excelize/v2"
)

const (
	variantsSheet = "variants"
	changesSheet  = "changes"
	jobSheet      = "job"
)

// BuildVariantWorkbook writes the variants of a completed job to an xlsx workbook,
// one row per variant. Optimization changes get their own sheet.
func BuildVariantWorkbook(job *models.GenerationJob, campaignUUID string) (*dto.VariantExport, error) {
	if job.Status != models.JobStatusCompleted || job.GeneratedContent == nil {
		return nil, ErrJobNotCompleted
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), variantsSheet); err != nil {
		return nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to prepare variants sheet", err)
	}

	header := []any{"variant_id", "subject_line", "preview_text", "confidence_score", "reasoning", "html_content", "plain_text_content"}
	if err := xl.SetSheetRow(variantsSheet, "A1", &header); err != nil {
		return nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write header", err)
	}
	for i, v := range job.GeneratedContent.Variants {
		record := []any{
			v.VariantID,
			v.SubjectLine,
			utils.Deref(v.PreviewText),
			v.ConfidenceScore,
			utils.Deref(v.Reasoning),
			v.HTMLContent,
			v.PlainTextContent,
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := xl.SetSheetRow(variantsSheet, cellRef, &record); err != nil {
			return nil, NewBusinessErrorf("EXCEL_WRITE_ERROR", "Failed to write variant %d", err, v.VariantID)
		}
	}

	if changes := job.GeneratedContent.Changes; len(changes) > 0 {
		if _, err := xl.NewSheet(changesSheet); err != nil {
			return nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to create changes sheet", err)
		}
		header := []any{"section", "change", "expected_impact"}
		_ = xl.SetSheetRow(changesSheet, "A1", &header)
		for i, c := range changes {
			record := []any{c.Section, c.Change, c.ExpectedImpact}
			cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
			_ = xl.SetSheetRow(changesSheet, cellRef, &record)
		}
	}

	if _, err := xl.NewSheet(jobSheet); err != nil {
		return nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to create job sheet", err)
	}
	completedAt := ""
	if job.CompletedAt != nil {
		completedAt = job.CompletedAt.UTC().Format(time.RFC3339)
	}
	rows := [][]any{
		{"job_id", job.UUID.String()},
		{"campaign_id", campaignUUID},
		{"job_type", job.JobType.String()},
		{"ai_model", utils.Deref(job.AIModel)},
		{"tokens_used", utils.Deref(job.TokensUsed)},
		{"confidence_score", utils.Deref(job.ConfidenceScore)},
		{"completed_at", completedAt},
	}
	for i, row := range rows {
		cellRef, _ := excelize.CoordinatesToCellName(1, i+1)
		_ = xl.SetSheetRow(jobSheet, cellRef, &row)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	return &dto.VariantExport{
		Filename: fmt.Sprintf("generation_%s_variants.xlsx", job.UUID.String()),
		Content:  buf.Bytes(),
	}, nil
}
