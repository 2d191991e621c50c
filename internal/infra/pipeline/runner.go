package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nicl-mu/renewal-portal/internal/usecase"
)

// ScriptRunner executes document-processing scripts with the script
// directory as working directory, streaming stdout lines as they arrive.
// It satisfies usecase.StageRunner.
type ScriptRunner struct {
	scriptDir   string
	interpreter string
}

func NewScriptRunner(scriptDir, interpreter string) *ScriptRunner {
	if interpreter == "" {
		interpreter = "python3"
	}
	return &ScriptRunner{scriptDir: scriptDir, interpreter: interpreter}
}

func (r *ScriptRunner) Run(ctx context.Context, script string, onLine func(string)) (string, error) {
	// A spawned stage always runs to process exit. The child is detached
	// from the caller's cancellation so a dropped request cannot kill a
	// generation mid-run.
	cmd := exec.CommandContext(context.WithoutCancel(ctx), r.interpreter, filepath.Join(r.scriptDir, script))
	cmd.Dir = r.scriptDir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", usecase.NewTechnicalError(usecase.CodeSpawn, "Failed to start script", err.Error())
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", usecase.NewTechnicalError(usecase.CodeSpawn, "Failed to start script", err.Error())
	}

	if err := cmd.Start(); err != nil {
		return "", usecase.NewTechnicalError(usecase.CodeSpawn, "Failed to start script", err.Error())
	}
	log.Printf("Running %s (pid %d)", script, cmd.Process.Pid)

	var outBuf, errBuf strings.Builder
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			outBuf.WriteString(line)
			outBuf.WriteByte('\n')
			if onLine != nil {
				onLine(line)
			}
		}
	}()
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			errBuf.WriteString(scanner.Text())
			errBuf.WriteByte('\n')
		}
	}()
	wg.Wait()

	output := strings.TrimSpace(outBuf.String())
	if err := cmd.Wait(); err != nil {
		detail := strings.TrimSpace(errBuf.String())
		if detail == "" {
			detail = output
		}
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return output, usecase.NewTechnicalError(usecase.CodeUpstream,
			fmt.Sprintf("%s exited with code %d", script, exitCode), detail)
	}
	return output, nil
}
