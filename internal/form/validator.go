// validator.go
//
// Schema-driven form validation and submission service for jam-build
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of jam-build-formsdb.
// jam-build-formsdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// jam-build-formsdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with jam-build-formsdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package form

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/localnerve/jam-build-formsdb/internal/log"
)

const (
	msgRequired     = "this field is required"
	msgFileRequired = "this file field is required"
	msgInvalidEmail = "enter a valid email address"
	msgInvalidNum   = "enter a valid number"
	msgInvalidBool  = "enter a valid boolean"
	msgChoice       = "invalid choice"
	msgChoices      = "invalid choice(s): %s"
	msgMinValue     = "value must be >= %s"
	msgMaxValue     = "value must be <= %s"
	msgMinLength    = "minimum length is %d"
	msgMaxLength    = "maximum length is %d"
	msgPattern      = "enter a valid value"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// validateFunc checks one field. It returns the typed value, or a non-empty
// message when the input is rejected.
type validateFunc func(f Field, values []string, files []Upload) (any, string)

// validators holds one variant per FieldType; FieldType.Valid is defined by
// membership here.
var validators = map[FieldType]validateFunc{
	TypeText:       validateText,
	TypeTextarea:   validateText,
	TypePassword:   validateText,
	TypeDate:       validateText,
	TypeHidden:     validateText,
	TypeEmail:      validateEmail,
	TypeNumber:     validateNumber,
	TypeCheckbox:   validateCheckbox,
	TypeCheckboxes: validateCheckboxes,
	TypeRadio:      validateChoice,
	TypeSelect:     validateChoice,
	TypeFile:       validateFile,
}

// ValidateField runs the variant for the field's type over the raw values and
// uploads submitted under its name. At most one message is returned.
func ValidateField(f Field, values []string, files []Upload) (any, []string) {
	validate, ok := validators[f.Type]
	if !ok {
		return nil, []string{fmt.Sprintf("unsupported field type %q", f.Type)}
	}
	value, msg := validate(f, values, files)
	if msg != "" {
		return nil, []string{msg}
	}
	return value, nil
}

// single picks the value of a single-valued field. The last submitted value
// wins; an empty string counts as not submitted.
func single(values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	v := values[len(values)-1]
	return v, v != ""
}

func absent(f Field) (any, string) {
	if f.Required {
		return nil, msgRequired
	}
	return nil, ""
}

func validateText(f Field, values []string, _ []Upload) (any, string) {
	s, ok := single(values)
	if !ok {
		return absent(f)
	}

	n := utf8.RuneCountInString(s)
	if lo := f.Rules.MinLength; lo != nil && n < *lo {
		return nil, fmt.Sprintf(msgMinLength, *lo)
	}
	if hi := f.Rules.MaxLength; hi != nil && n > *hi {
		return nil, fmt.Sprintf(msgMaxLength, *hi)
	}

	if f.Rules.Regex != "" {
		re, err := regexp.Compile(f.Rules.Regex)
		if err != nil {
			log.Warnf("form.rules.regex: field %s: %v", f.Name, err)
		} else if !re.MatchString(s) {
			return nil, msgPattern
		}
	}
	return s, ""
}

func validateEmail(f Field, values []string, _ []Upload) (any, string) {
	s, ok := single(values)
	if !ok {
		return absent(f)
	}
	if !emailPattern.MatchString(s) {
		return nil, msgInvalidEmail
	}
	return s, ""
}

func validateNumber(f Field, values []string, _ []Upload) (any, string) {
	s, ok := single(values)
	if !ok {
		return absent(f)
	}
	s = strings.TrimSpace(s)

	var value any
	var num float64
	if strings.Contains(s, ".") {
		fv, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(fv) || math.IsInf(fv, 0) {
			return nil, msgInvalidNum
		}
		value, num = fv, fv
	} else {
		iv, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, msgInvalidNum
		}
		value, num = iv, float64(iv)
	}

	if lo := f.Rules.Min; lo != nil && num < *lo {
		return nil, fmt.Sprintf(msgMinValue, formatNumber(*lo))
	}
	if hi := f.Rules.Max; hi != nil && num > *hi {
		return nil, fmt.Sprintf(msgMaxValue, formatNumber(*hi))
	}
	return value, ""
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func validateCheckbox(f Field, values []string, _ []Upload) (any, string) {
	s, ok := single(values)
	if !ok {
		return absent(f)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1", "yes":
		return true, ""
	case "off", "false", "0", "no":
		if f.Required {
			return nil, msgRequired
		}
		return false, ""
	}
	return nil, msgInvalidBool
}

func validateCheckboxes(f Field, values []string, _ []Upload) (any, string) {
	picked := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			picked = append(picked, v)
		}
	}
	if len(picked) == 0 {
		return absent(f)
	}

	if len(f.Options) > 0 {
		var invalid []string
		for _, v := range picked {
			if !f.HasOption(v) {
				invalid = append(invalid, v)
			}
		}
		if len(invalid) > 0 {
			return nil, fmt.Sprintf(msgChoices, strings.Join(invalid, ", "))
		}
	}
	return picked, ""
}

func validateChoice(f Field, values []string, _ []Upload) (any, string) {
	s, ok := single(values)
	if !ok {
		return absent(f)
	}
	if len(f.Options) > 0 && !f.HasOption(s) {
		return nil, msgChoice
	}
	return s, ""
}

// validateFile only checks presence; storing happens in the writer.
func validateFile(f Field, _ []string, files []Upload) (any, string) {
	if len(files) == 0 {
		if f.Required {
			return nil, msgFileRequired
		}
		return nil, ""
	}
	refs := make(FileRefs, len(files))
	for i, u := range files {
		refs[i] = u.Filename
	}
	return refs, ""
}
