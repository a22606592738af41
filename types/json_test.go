/*
 * Copyright 2025 pai-group.
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
 */

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJsonObjectScanAcceptsBytesAndString(t *testing.T) {
	var fromBytes JsonObject
	require.NoError(t, fromBytes.Scan([]byte(`{"field":"email","old":"a@x"}`)))
	assert.Equal(t, "email", fromBytes["field"])

	var fromString JsonObject
	require.NoError(t, fromString.Scan(`{"field":"email"}`))
	assert.Equal(t, "email", fromString["field"])

	var fromNil JsonObject
	require.NoError(t, fromNil.Scan(nil))
	assert.NotNil(t, fromNil)
	assert.Empty(t, fromNil)

	var bad JsonObject
	assert.Error(t, bad.Scan(42))
}

func TestJsonObjectValue(t *testing.T) {
	obj := JsonObject{"k": "v"}
	v, err := obj.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"k":"v"}`, string(v.([]byte)))

	var nilObj JsonObject
	v, err = nilObj.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestJsonArrayRoundTrip(t *testing.T) {
	arr := JsonArray{{"a": float64(1)}, {"b": float64(2)}}
	v, err := arr.Value()
	require.NoError(t, err)

	var scanned JsonArray
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, arr, scanned)

	var fromNil JsonArray
	require.NoError(t, fromNil.Scan(nil))
	assert.Empty(t, fromNil)
}
