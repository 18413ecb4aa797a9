package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/scorecard/core/project"
	"github.com/trezcool/scorecard/core/scoring"
	"github.com/trezcool/scorecard/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if usr.Role == "" {
		usr.Role = user.RoleStandard
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateProject(
	t *testing.T,
	svc project.Service,
	actor user.User,
	name string,
	sel scoring.Selections,
) project.Project {
	p, err := svc.Create(context.Background(), actor, project.NewProject{Name: name, Selections: sel})
	if err != nil {
		t.Fatalf("CreateProject() failed: %v", err)
	}
	return p
}

// CMFSelections returns a minimal single-category submission, handy as a
// test fixture.
func CMFSelections(value float64, person string, workDays float64) scoring.Selections {
	return scoring.Selections{
		Design: &scoring.DesignSelection{
			Variant: scoring.DesignCMF,
			CMF:     &scoring.CMFSelection{Value: value, Person: person, WorkDays: workDays},
		},
	}
}
