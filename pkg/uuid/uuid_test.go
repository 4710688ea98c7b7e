// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuid_test

import (
	"testing"

	guuid "github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/joury-go/pkg/uuid"
)

func TestNew_IsVersion7(t *testing.T) {
	parsed, err := guuid.Parse(uuid.New())
	require.NoError(t, err)
	assert.Equal(t, guuid.Version(7), parsed.Version())
}

func TestNew_TimeOrdered(t *testing.T) {
	// V7 identifiers sort by creation order, which is what makes them
	// usable as durable device identifiers.
	first := uuid.New()
	second := uuid.New()
	assert.Less(t, first, second)
}
