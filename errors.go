/*
 *
 * Copyright 2024-present Marek Novotny.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package weld

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

/**
DefinitionError reports a structural violation discoverable statically
from the annotated metadata. It is always fatal to the registration of
the offending bean and is aggregated by the manager across the whole
deployment before startup is refused.
*/
type DefinitionError struct {
	cause error
}

func (t *DefinitionError) Error() string {
	return "definition error: " + t.cause.Error()
}

func (t *DefinitionError) Unwrap() error {
	return t.cause
}

func definitionErrorf(format string, args ...interface{}) error {
	return &DefinitionError{cause: errors.Errorf(format, args...)}
}

func IsDefinitionError(err error) bool {
	var de *DefinitionError
	return stderrors.As(err, &de)
}

/**
IllegalArgumentError reports a violated public API precondition, and is
the normalized form every failure of the validated producer-creation
path is wrapped into. Callers inspect the message only, the wrapped
cause is not part of the contract.
*/
type IllegalArgumentError struct {
	cause error
}

func (t *IllegalArgumentError) Error() string {
	return "illegal argument: " + t.cause.Error()
}

func (t *IllegalArgumentError) Unwrap() error {
	return t.cause
}

func illegalArgumentErrorf(format string, args ...interface{}) error {
	return &IllegalArgumentError{cause: errors.Errorf(format, args...)}
}

/**
Normalizes any lower-level failure into the illegal-argument kind,
keeping an already normalized error untouched.
*/
func illegalArgument(err error) error {
	if err == nil {
		return nil
	}
	var ia *IllegalArgumentError
	if stderrors.As(err, &ia) {
		return err
	}
	return &IllegalArgumentError{cause: err}
}

func IsIllegalArgument(err error) bool {
	var ia *IllegalArgumentError
	return stderrors.As(err, &ia)
}
