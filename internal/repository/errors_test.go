package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestDuplicateKey(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'R-1' for key 'students.uq_students_rbt'"}

	msg, ok := duplicateKey(fmt.Errorf("insert: %w", dup))
	assert.True(t, ok)
	assert.Contains(t, msg, "uq_students_rbt")

	_, ok = duplicateKey(&mysql.MySQLError{Number: 1452, Message: "foreign key"})
	assert.False(t, ok)

	_, ok = duplicateKey(errors.New("Error 1062 spelled out in text"))
	assert.False(t, ok, "only typed driver errors count")

	_, ok = duplicateKey(nil)
	assert.False(t, ok)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ann@uni.edu", normalizeEmail("  Ann@Uni.EDU "))
}
