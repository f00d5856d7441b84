// Package jsonvalidate checks inbound JSON payloads against the schema
// files shipped with the service and folds validator reports into the
// stable, user-facing messages the REST surface returns on 400.
package jsonvalidate

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Stable result messages. The non-OK values are returned verbatim in
// 400-class response bodies, so their wording is load-bearing.
const (
	MsgOK               = "OK"
	MsgHeaderNG         = "ERROR(HTTP Header NG)"
	MsgJSONFormatNG     = "ERROR(JSON format NG)"
	MsgMandatoryAttrNG  = "Mandatory Attribute NG: "
	MsgMandatoryTypeNG  = "Mandatory Type NG: "
	MsgInstanceFailedNG = "Instance failed to match exactly one schema: "
	MsgUnwantedAttrNG   = "ERROR(Unwanted Attribute: "
	MsgAlreadyExistsNG  = "ERROR(Already exists: "
)

// CheckResult is the outcome of one validation. Message is empty on
// success and one of the Msg* templates (plus detail) otherwise.
type CheckResult struct {
	Success bool
	Message string
}

// Validate checks document against the schema at schemaPath. It never
// returns an error: unreadable schemas and syntactically broken documents
// both come back as a failed CheckResult with the generic format message.
func Validate(schemaPath string, document []byte) CheckResult {
	if !json.Valid(document) {
		return CheckResult{Success: false, Message: MsgJSONFormatNG}
	}

	abs, err := filepath.Abs(schemaPath)
	if err != nil {
		return CheckResult{Success: false, Message: MsgJSONFormatNG}
	}
	schemaLoader := gojsonschema.NewReferenceLoader("file://" + filepath.ToSlash(abs))
	documentLoader := gojsonschema.NewBytesLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		// Schema could not be resolved; not the caller's fault to untangle.
		return CheckResult{Success: false, Message: MsgJSONFormatNG}
	}
	if result.Valid() {
		return CheckResult{Success: true, Message: ""}
	}
	return CheckResult{Success: false, Message: classify(result.Errors())}
}

// classify turns a validator report into one stable message. It is a
// priority cascade: only the first matching category is reported even when
// several violation kinds coexist. Kept in one place so a structured
// report API can replace it without touching callers.
func classify(errs []gojsonschema.ResultError) string {
	if names := collectDetails(errs, "required", "property"); len(names) > 0 {
		return MsgMandatoryAttrNG + strings.Join(names, ", ")
	}
	if expected := collectDetails(errs, "invalid_type", "expected"); len(expected) > 0 {
		return MsgMandatoryTypeNG + strings.Join(expected, ", ")
	}
	for _, e := range errs {
		if e.Type() == "number_one_of" {
			return MsgInstanceFailedNG + e.Description()
		}
	}
	if names := collectDetails(errs, "additional_property_not_allowed", "property"); len(names) > 0 {
		return MsgUnwantedAttrNG + strings.Join(names, ", ") + ")"
	}
	return MsgJSONFormatNG
}

func collectDetails(errs []gojsonschema.ResultError, errType, detailKey string) []string {
	var out []string
	for _, e := range errs {
		if e.Type() != errType {
			continue
		}
		if v, ok := e.Details()[detailKey]; ok {
			out = append(out, fmt.Sprintf("%v", v))
		} else {
			out = append(out, e.Description())
		}
	}
	return out
}
