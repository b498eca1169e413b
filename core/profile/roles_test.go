package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		kinds Kinds
		want  Role
	}{
		{name: "none", kinds: NewKinds(), want: RoleGuest},
		{name: "student", kinds: NewKinds(KindStudent), want: RoleStudent},
		{name: "teacher", kinds: NewKinds(KindTeacher), want: RoleTeacher},
		{name: "director", kinds: NewKinds(KindDirector), want: RoleDirector},
		{name: "teacher & student", kinds: NewKinds(KindStudent, KindTeacher), want: RoleTeacher},
		{name: "director & teacher", kinds: NewKinds(KindTeacher, KindDirector), want: RoleDirector},
		{name: "all", kinds: NewKinds(KindStudent, KindTeacher, KindDirector), want: RoleDirector},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.kinds))
		})
	}
}

func TestProfiles(t *testing.T) {
	var none Profiles
	assert.True(t, none.Kinds().IsEmpty())
	assert.Equal(t, RoleGuest, none.Role())
	assert.False(t, none.IsStaff())

	both := Profiles{Teacher: &Teacher{ID: "t"}, Director: &Director{ID: "d"}}
	assert.True(t, both.Kinds().Has(KindTeacher))
	assert.False(t, both.Kinds().Has(KindStudent))
	assert.Equal(t, RoleDirector, both.Role())
	assert.True(t, both.IsStaff())
}

func TestNewStudent_Clean(t *testing.T) {
	tests := []struct {
		name           string
		in             NewStudent
		wantCourse     int
		wantGPA        float64
		wantAttendance float64
	}{
		{name: "in range", in: NewStudent{Course: 3, GPA: 4.2, Attendance: 88}, wantCourse: 3, wantGPA: 4.2, wantAttendance: 88},
		{name: "defaults course", in: NewStudent{GPA: 3}, wantCourse: 1, wantGPA: 3},
		{name: "clamps high", in: NewStudent{Course: 1, GPA: 7, Attendance: 140}, wantCourse: 1, wantGPA: MaxGPA, wantAttendance: MaxAttendance},
		{name: "clamps low", in: NewStudent{Course: 1, GPA: -1, Attendance: -5}, wantCourse: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns := tt.in
			ns.Clean()
			assert.Equal(t, tt.wantCourse, ns.Course)
			assert.Equal(t, tt.wantGPA, ns.GPA)
			assert.Equal(t, tt.wantAttendance, ns.Attendance)
		})
	}
}
