package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The script names are contracts with the document-processing scripts; the
// health stages in particular run two different merge scripts in a fixed
// order.
func TestPipelineScriptBindings(t *testing.T) {
	pipes := Pipelines(Config{DataDir: "data", ScriptsDir: "scripts"})

	motor, ok := pipes["motor"]
	require.True(t, ok)
	assert.Equal(t, "Motor_Insurance_Renewal.py", motor.GenerateScript)
	assert.Equal(t, "merge_motor_pdfs.py", motor.MergeScript)
	assert.Empty(t, motor.AttachScript)
	require.NotNil(t, motor.Printer)
	assert.Equal(t, "Motor_Insurance_Renewal_Printer_version.py", motor.Printer.GenerateScript)
	assert.Equal(t, "merge_motor_printer_pdfs.py", motor.Printer.MergeScript)

	health, ok := pipes["health"]
	require.True(t, ok)
	assert.Equal(t, "healthcare_renewal_final.py", health.GenerateScript)
	// First merge attaches the HealthSense forms in place, the final merge
	// consolidates everything
	assert.Equal(t, "simple_merge.py", health.AttachScript)
	assert.Equal(t, "health_renewal_mergefile.py", health.MergeScript)
	assert.Nil(t, health.Printer)
}
