package academic_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/academic"
	"github.com/trezcool/college/tests"
)

func TestService_CreateGroup(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	grp, err := app.Academic.CreateGroup(ctx, academic.NewGroup{Name: "  Software  ", Code: " po-1 "})
	require.NoError(t, err)
	assert.Equal(t, "PO-1", grp.Code)
	assert.Equal(t, "Software", grp.Name)

	tests := []struct {
		name      string
		ng        academic.NewGroup
		wantField string
	}{
		{name: "missing name", ng: academic.NewGroup{Code: "IS-1"}, wantField: "name"},
		{name: "missing code", ng: academic.NewGroup{Name: "Info"}, wantField: "code"},
		{name: "bad code", ng: academic.NewGroup{Name: "Info", Code: "IS 1!"}, wantField: "code"},
		{name: "code taken", ng: academic.NewGroup{Name: "Other", Code: "Po-1"}, wantField: "code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.Academic.CreateGroup(ctx, tt.ng)
			assert.Contains(t, core.FieldErrors(err, app.Translator), tt.wantField)
		})
	}

	got, err := app.Academic.GetGroupByCode(ctx, "po-1")
	require.NoError(t, err)
	assert.Equal(t, grp.ID, got.ID)

	_, err = app.Academic.GetGroupByCode(ctx, "IS-9")
	assert.True(t, core.IsNotFound(err), "got %v", err)
}

func TestService_Subjects(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	prog := app.CreateSubject(t, "prog", "Programming")
	math := app.CreateSubject(t, "MATH", "Mathematics")
	eng := app.CreateSubject(t, "ENG", "English")
	assert.Equal(t, "PROG", prog.Code)

	_, err := app.Academic.CreateSubject(ctx, academic.NewSubject{Name: "Maths again", Code: "math"})
	assert.Contains(t, core.FieldErrors(err, app.Translator), "code")

	got, err := app.Academic.GetSubjectByCode(ctx, "Math")
	require.NoError(t, err)
	assert.Equal(t, math.ID, got.ID)

	all, err := app.Academic.ListSubjects(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	filtered := academic.FilterSubjects(all, []string{eng.ID, prog.ID, "unknown"})
	require.Len(t, filtered, 2)
	for _, subj := range filtered {
		assert.NotEqual(t, math.ID, subj.ID)
	}
	assert.Empty(t, academic.FilterSubjects(all, nil))
}
