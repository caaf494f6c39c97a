package v1

import (
	"net/http"

	"github.com/kiosk404/scrivener/pkg/errorx"
)

// Scriptorium handler error codes.
// Code format: 1XXYYZ
//   - 1:  module prefix (scriptorium handler)
//   - XX: resource group (00=common, 01=persona, 02=channel, 03=chat,
//     04=scripts, 05=tasks, 06=system, 07=conversation)
//   - YY: sequential error number
//   - Z:  reserved (0)

const (
	// Common request errors (100xxx).
	ErrBind       = 100001
	ErrValidation = 100002

	// Persona errors (1001xx).
	ErrPersonaNotFound = 100101
	ErrPersonaExists   = 100102
	ErrPersonaInvalid  = 100103
	ErrPersonaReload   = 100104

	// Channel errors (1002xx).
	ErrChannelNotFound = 100201

	// Chat errors (1003xx).
	ErrChatFailed     = 100301
	ErrMessageEmpty   = 100302
	ErrMessageTooLong = 100303

	// Script errors (1004xx).
	ErrPlatformNotSupported = 100401
	ErrGenerateFailed       = 100402
	ErrImproveFailed        = 100403
	ErrValidateFailed       = 100404

	// Task errors (1005xx).
	ErrTaskNotFound    = 100501
	ErrPolicyDenied    = 100502
	ErrTaskSubmit      = 100503
	ErrTaskCancel      = 100504
	ErrExecutionFailed = 100505
	ErrConfirmRequired = 100506

	// System errors (1006xx).
	ErrSystemStatus = 100601

	// Conversation errors (1007xx).
	ErrConversationNotFound = 100701
)

func init() {
	// Common.
	errorx.MustRegister(newCoder(ErrBind, http.StatusBadRequest, "VALIDATION_ERROR", "Request body binding failed"))
	errorx.MustRegister(newCoder(ErrValidation, http.StatusBadRequest, "VALIDATION_ERROR", "Request validation failed"))

	// Persona.
	errorx.MustRegister(newCoder(ErrPersonaNotFound, http.StatusNotFound, "PERSONA_NOT_FOUND", "Persona not found"))
	errorx.MustRegister(newCoder(ErrPersonaExists, http.StatusConflict, "CONFLICT", "Persona already exists"))
	errorx.MustRegister(newCoder(ErrPersonaInvalid, http.StatusBadRequest, "VALIDATION_ERROR", "Persona definition is invalid"))
	errorx.MustRegister(newCoder(ErrPersonaReload, http.StatusInternalServerError, "INTERNAL", "Persona reload failed"))

	// Channel.
	errorx.MustRegister(newCoder(ErrChannelNotFound, http.StatusNotFound, "CHANNEL_NOT_FOUND", "Channel not found"))

	// Chat.
	errorx.MustRegister(newCoder(ErrChatFailed, http.StatusServiceUnavailable, "LLM_UNAVAILABLE", "No language model provider is reachable"))
	errorx.MustRegister(newCoder(ErrMessageEmpty, http.StatusBadRequest, "VALIDATION_ERROR", "Message must not be empty"))
	errorx.MustRegister(newCoder(ErrMessageTooLong, http.StatusBadRequest, "VALIDATION_ERROR", "Message exceeds the channel limit"))

	// Scripts.
	errorx.MustRegister(newCoder(ErrPlatformNotSupported, http.StatusBadRequest, "PLATFORM_NOT_SUPPORTED", "Platform is not supported"))
	errorx.MustRegister(newCoder(ErrGenerateFailed, http.StatusServiceUnavailable, "LLM_UNAVAILABLE", "Script generation failed"))
	errorx.MustRegister(newCoder(ErrImproveFailed, http.StatusServiceUnavailable, "LLM_UNAVAILABLE", "Script improvement failed"))
	errorx.MustRegister(newCoder(ErrValidateFailed, http.StatusInternalServerError, "INTERNAL", "Script validation failed"))

	// Tasks.
	errorx.MustRegister(newCoder(ErrTaskNotFound, http.StatusNotFound, "NOT_FOUND", "Task not found"))
	errorx.MustRegister(newCoder(ErrPolicyDenied, http.StatusForbidden, "POLICY_DENIED", "Script blocked by execution policy"))
	errorx.MustRegister(newCoder(ErrTaskSubmit, http.StatusBadRequest, "VALIDATION_ERROR", "Execution request is invalid"))
	errorx.MustRegister(newCoder(ErrTaskCancel, http.StatusConflict, "CONFLICT", "Task already finished"))
	errorx.MustRegister(newCoder(ErrExecutionFailed, http.StatusInternalServerError, "EXECUTION_FAILED", "Script execution failed"))
	errorx.MustRegister(newCoder(ErrConfirmRequired, http.StatusForbidden, "POLICY_DENIED", "Elevated execution requires confirmation"))

	// System.
	errorx.MustRegister(newCoder(ErrSystemStatus, http.StatusInternalServerError, "INTERNAL", "Failed to read system status"))

	// Conversation.
	errorx.MustRegister(newCoder(ErrConversationNotFound, http.StatusNotFound, "NOT_FOUND", "Conversation not found"))
}

type coder struct {
	code    int
	http    int
	apiCode string
	msg     string
}

func newCoder(code, httpStatus int, apiCode, msg string) *coder {
	return &coder{code: code, http: httpStatus, apiCode: apiCode, msg: msg}
}

func (c *coder) Code() int       { return c.code }
func (c *coder) APICode() string { return c.apiCode }
func (c *coder) HTTPStatus() int { return c.http }
func (c *coder) String() string  { return c.msg }
