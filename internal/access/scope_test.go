package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audits "energy-audit/internal/audits/domain"
	"energy-audit/internal/auth"
	"energy-audit/internal/validation"
)

var projects = []audits.Project{
	{ID: "p1", OrganizationID: "org-a", LeadID: "prof-1", Team: []string{"stu-1", "stu-2"}},
	{ID: "p2", OrganizationID: "org-a", LeadID: "prof-2", Team: []string{"stu-2"}},
	{ID: "p3", OrganizationID: "org-b", LeadID: "prof-1", Team: []string{"dir-a"}},
}

func visible(identity auth.Identity) []string {
	scope := Resolve(identity)
	var ids []string
	for _, p := range projects {
		if scope.Allows(p) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func TestResolve_VisibilityByRole(t *testing.T) {
	cases := []struct {
		name     string
		identity auth.Identity
		want     []string
	}{
		{"student sees team projects", auth.Identity{UserID: "stu-2", Role: auth.RoleStudent}, []string{"p1", "p2"}},
		{"professor sees led projects", auth.Identity{UserID: "prof-1", Role: auth.RoleProfessor}, []string{"p1", "p3"}},
		{"center director sees organization regardless of team", auth.Identity{UserID: "dir-a", Role: auth.RoleCenterDirector, OrganizationID: "org-a"}, []string{"p1", "p2"}},
		{"national director sees all", auth.Identity{UserID: "nat", Role: auth.RoleNationalDirector}, []string{"p1", "p2", "p3"}},
		{"superuser sees all", auth.Identity{UserID: "root", Superuser: true}, []string{"p1", "p2", "p3"}},
		{"center director without organization sees nothing", auth.Identity{UserID: "dir-x", Role: auth.RoleCenterDirector}, nil},
		{"unknown role sees nothing", auth.Identity{UserID: "ghost", Role: "OTRO"}, nil},
		{"anonymous sees nothing", auth.Identity{}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, visible(tc.identity))
		})
	}
}

func TestCanAccess_DualHatNationalDirector(t *testing.T) {
	dual := auth.Identity{UserID: "nat", Role: auth.RoleNationalDirector, OrganizationID: "org-b"}
	for _, p := range projects {
		assert.True(t, CanAccess(dual, p), p.ID)
	}
}

func TestCanEditProject(t *testing.T) {
	p1 := projects[0]

	assert.True(t, CanEditProject(auth.Identity{UserID: "prof-1", Role: auth.RoleProfessor}, p1))
	assert.False(t, CanEditProject(auth.Identity{UserID: "prof-2", Role: auth.RoleProfessor}, p1))
	assert.False(t, CanEditProject(auth.Identity{UserID: "stu-1", Role: auth.RoleStudent}, p1), "team members edit records, not structure")
	assert.True(t, CanEditProject(auth.Identity{UserID: "dir-a", Role: auth.RoleCenterDirector, OrganizationID: "org-a"}, p1))
	assert.False(t, CanEditProject(auth.Identity{UserID: "dir-b", Role: auth.RoleCenterDirector, OrganizationID: "org-b"}, p1))
	assert.True(t, CanEditProject(auth.Identity{UserID: "nat", Role: auth.RoleNationalDirector, OrganizationID: "org-a"}, p1))
	assert.False(t, CanEditProject(auth.Identity{UserID: "nat", Role: auth.RoleNationalDirector}, p1))
	assert.True(t, CanEditProject(auth.Identity{UserID: "root", Superuser: true}, p1))
}

func TestWriteTiers(t *testing.T) {
	student := auth.Identity{UserID: "s", Role: auth.RoleStudent}
	professor := auth.Identity{UserID: "p", Role: auth.RoleProfessor}
	center := auth.Identity{UserID: "c", Role: auth.RoleCenterDirector, OrganizationID: "org-a"}
	national := auth.Identity{UserID: "n", Role: auth.RoleNationalDirector}

	assert.False(t, CanCreateProject(student))
	assert.True(t, CanCreateProject(professor))
	assert.False(t, CanManageDirectory(professor))
	assert.True(t, CanManageDirectory(center))

	assert.True(t, CanManageUser(center, auth.Identity{UserID: "u1", Role: auth.RoleProfessor, OrganizationID: "org-a"}))
	assert.False(t, CanManageUser(center, auth.Identity{UserID: "u2", Role: auth.RoleStudent, OrganizationID: "org-b"}))
	assert.False(t, CanManageUser(center, auth.Identity{UserID: "u3", Role: auth.RoleCenterDirector, OrganizationID: "org-a"}))
	assert.False(t, CanManageUser(center, auth.Identity{UserID: "u4", Role: auth.RoleNationalDirector, OrganizationID: "org-a"}))
	assert.False(t, CanManageUser(national, auth.Identity{UserID: "root", Superuser: true}))
	assert.True(t, CanManageUser(national, auth.Identity{UserID: "u5", Role: auth.RoleCenterDirector, OrganizationID: "org-b"}))

	assert.True(t, CanViewStrategicDashboard(center))
	assert.False(t, CanViewNationalDashboard(center))
	assert.True(t, CanViewNationalDashboard(national))
}

func TestValidateAssignedRole_RejectsEscalation(t *testing.T) {
	center := auth.Identity{UserID: "c", Role: auth.RoleCenterDirector, OrganizationID: "org-a"}

	assert.NoError(t, ValidateAssignedRole(center, auth.RoleProfessor))

	err := ValidateAssignedRole(center, auth.RoleNationalDirector)
	verr, ok := validation.As(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "rol")
	assert.Error(t, ValidateAssignedRole(center, auth.RoleCenterDirector))

	national := auth.Identity{UserID: "n", Role: auth.RoleNationalDirector}
	assert.NoError(t, ValidateAssignedRole(national, auth.RoleNationalDirector))
}
