// Package inmemdb provides in-memory repository implementations,
// used in tests and as a lightweight backend for local development.
package inmemdb

import (
	"sync"

	"github.com/trezcool/scorecard/core/personnel"
	"github.com/trezcool/scorecard/core/project"
	"github.com/trezcool/scorecard/core/scoring"
	"github.com/trezcool/scorecard/core/user"
)

type (
	DB struct {
		user      *userTable
		project   *projectTable
		personnel *personnelTable
		scoring   *scoringTable
	}

	userTable struct {
		table map[string]*user.User
		mutex sync.RWMutex
	}

	projectTable struct {
		table map[string]*project.Project
		mutex sync.RWMutex
	}

	personnelTable struct {
		table map[string]*personnel.Entry
		mutex sync.RWMutex
	}

	scoringTable struct {
		table *scoring.Table
		mutex sync.RWMutex
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:      &userTable{table: make(map[string]*user.User)},
		project:   &projectTable{table: make(map[string]*project.Project)},
		personnel: &personnelTable{table: make(map[string]*personnel.Entry)},
		scoring:   new(scoringTable),
	}
	return db, nil
}
