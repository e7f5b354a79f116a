package relay

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/Hamzas-Aigentic/Forgeflow/pkg/protocol"
)

const fixPromptTemplate = `[AUTO-FIX REQUEST]

A workflow has failed and needs to be fixed automatically.

Workflow ID: {workflowId}
Workflow Name: {workflowName}
Failed Node: {failedNode}
Error Message: {errorMessage}
Execution ID: {executionId}

INSTRUCTIONS:
1. Use the n8n-mcp tool "n8n_get_workflow" to retrieve the full workflow configuration
2. Analyze the workflow structure and the error to diagnose the root cause
3. Fix the workflow using "n8n_update_partial_workflow" or "n8n_update_full_workflow"
4. After fixing, provide a summary

IMPORTANT: At the end of your response, include a JSON block with this exact format:
` + "```json" + `
{
  "diagnosis": "Brief description of what caused the error",
  "fixApplied": "Description of the changes made to fix it",
  "summary": "One sentence summary of the fix"
}
` + "```" + `

Now proceed to diagnose and fix the workflow.`

var fixSummaryBlock = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")

// fix runs a one-shot auto-fix conversation for a failed workflow and
// returns the assistant's structured summary. Unlike the chat path there is
// no session: the run starts from an empty history and nothing is persisted.
func (h *Handler) fix(w http.ResponseWriter, r *http.Request) {
	var req protocol.FixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.WorkflowID == "" || req.ErrorMessage == "" {
		slog.Warn("fix request missing required fields")
		writeError(w, http.StatusBadRequest, "workflowId and errorMessage are required")
		return
	}

	slog.Info("processing fix request",
		"workflow_id", req.WorkflowID, "workflow_name", req.WorkflowName, "failed_node", req.FailedNode)

	prompt := buildFixPrompt(req)

	stream, err := h.executor.Run(h.baseCtx, nil, prompt)
	if err != nil {
		slog.Error("fix request failed", "workflow_id", req.WorkflowID, "error", err)
		writeJSON(w, http.StatusInternalServerError, protocol.FixResponse{
			Success:    false,
			WorkflowID: req.WorkflowID,
			Diagnosis:  "Fix process failed",
			FixApplied: "None",
			Summary:    "Error occurred during fix attempt",
			Error:      err.Error(),
		})
		return
	}

	// The fix path only cares about the final text; activities are dropped.
	for range stream.Events() {
	}
	result := stream.Wait()

	diagnosis, fixApplied, summary := parseFixSummary(result.Response)

	slog.Info("fix request completed", "workflow_id", req.WorkflowID, "summary", summary)

	writeJSON(w, http.StatusOK, protocol.FixResponse{
		Success:      true,
		WorkflowID:   req.WorkflowID,
		Diagnosis:    diagnosis,
		FixApplied:   fixApplied,
		Summary:      summary,
		FullResponse: result.Response,
	})
}

func buildFixPrompt(req protocol.FixRequest) string {
	replacer := strings.NewReplacer(
		"{workflowId}", req.WorkflowID,
		"{workflowName}", orUnknown(req.WorkflowName),
		"{failedNode}", orUnknown(req.FailedNode),
		"{errorMessage}", req.ErrorMessage,
		"{executionId}", orUnknown(req.ExecutionID),
	)
	return replacer.Replace(fixPromptTemplate)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// parseFixSummary pulls the trailing ```json summary block out of the
// response. A missing or corrupt block degrades to pointers at the full
// response rather than failing the request.
func parseFixSummary(response string) (diagnosis, fixApplied, summary string) {
	match := fixSummaryBlock.FindStringSubmatch(response)
	if match != nil {
		var parsed struct {
			Diagnosis  string `json:"diagnosis"`
			FixApplied string `json:"fixApplied"`
			Summary    string `json:"summary"`
		}
		if err := json.Unmarshal([]byte(match[1]), &parsed); err == nil {
			diagnosis = parsed.Diagnosis
			fixApplied = parsed.FixApplied
			summary = parsed.Summary
			if diagnosis == "" {
				diagnosis = "Unable to determine diagnosis"
			}
			if fixApplied == "" {
				fixApplied = "Fix details not provided"
			}
			if summary == "" {
				summary = "Fix applied"
			}
			return diagnosis, fixApplied, summary
		}
		slog.Warn("failed to parse fix summary JSON from response")
	}

	return "See full response for details", "See full response for details", "Fix attempted - check full response"
}
