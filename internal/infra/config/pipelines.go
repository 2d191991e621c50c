package config

import (
	"github.com/nicl-mu/renewal-portal/internal/usecase"
)

// Pipelines returns the fixed per-team layout. Directory and script names
// are contracts with the document-processing scripts and must not change
// independently of them.
func Pipelines(c Config) map[string]usecase.Pipeline {
	return map[string]usecase.Pipeline{
		"motor": {
			Team:           "motor",
			UploadDir:      c.Dir("uploads", "motor"),
			UploadFile:     "output_motor_renewal.xlsx",
			ScriptDir:      c.ScriptsDir,
			WorkFile:       "output_motor_renewal.xlsx",
			OutputDir:      c.Dir("output_motor"),
			MergedDir:      c.Dir("merged_motor_policies"),
			GenerateScript: "Motor_Insurance_Renewal.py",
			MergeScript:    "merge_motor_pdfs.py",
			CountScript:    "count_records.py",
			Printer: &usecase.PrinterPipeline{
				OutputDir:      c.Dir("output_motor_printer"),
				MergedDir:      c.Dir("merged_motor_printer_policies"),
				GenerateScript: "Motor_Insurance_Renewal_Printer_version.py",
				MergeScript:    "merge_motor_printer_pdfs.py",
			},
		},
		"health": {
			Team:           "health",
			UploadDir:      c.Dir("uploads", "health"),
			UploadFile:     "RENEWAL_LISTING.xlsx",
			ScriptDir:      c.ScriptsDir,
			WorkFile:       "RENEWAL_LISTING.xlsx",
			OutputDir:      c.Dir("output_renewals"),
			MergedDir:      c.Dir("merged_health_policies"),
			GenerateScript: "healthcare_renewal_final.py",
			AttachScript:   "simple_merge.py",
			MergeScript:    "health_renewal_mergefile.py",
			CountScript:    "count_health_records.py",
			RequiredForms: []string{
				"Renewal Acceptance Form - HealthSense Plan V2 0.pdf",
				"Annex.pdf",
			},
		},
	}
}
