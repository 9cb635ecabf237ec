package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayDump_SkipsCommentsAndBlankLines(t *testing.T) {
	dump := strings.Join([]string{
		"-- MariaDB dump 10.19",
		"",
		"-- Host: localhost    Database: shop",
		"CREATE TABLE t (id INT);",
		"",
		"INSERT INTO t VALUES (1);",
	}, "\n")

	var executed []string
	result, err := replayDump(strings.NewReader(dump), func(stmt string) error {
		executed = append(executed, stmt)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.ExecutedStatements)
	assert.Equal(t, 0, result.FailedStatements)
	assert.Equal(t, []string{
		"CREATE TABLE t (id INT);",
		"INSERT INTO t VALUES (1);",
	}, executed)
}

func TestReplayDump_UnwrapsConditionalComments(t *testing.T) {
	dump := strings.Join([]string{
		"/*!40101 SET NAMES utf8mb4 */;",
		"/*!40014 SET FOREIGN_KEY_CHECKS=0 */;",
		"/*!50003 */;",
	}, "\n")

	var executed []string
	result, err := replayDump(strings.NewReader(dump), func(stmt string) error {
		executed = append(executed, stmt)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.ExecutedStatements)
	assert.Equal(t, []string{
		"SET NAMES utf8mb4;",
		"SET FOREIGN_KEY_CHECKS=0;",
	}, executed)
}

func TestReplayDump_AccumulatesMultiLineStatements(t *testing.T) {
	dump := strings.Join([]string{
		"CREATE TABLE `orders` (",
		"  `id` INT NOT NULL,",
		"  PRIMARY KEY (`id`)",
		") ENGINE=InnoDB;",
	}, "\n")

	var executed []string
	result, err := replayDump(strings.NewReader(dump), func(stmt string) error {
		executed = append(executed, stmt)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.ExecutedStatements)
	require.Len(t, executed, 1)
	assert.Equal(t,
		"CREATE TABLE `orders` ( `id` INT NOT NULL, PRIMARY KEY (`id`) ) ENGINE=InnoDB;",
		executed[0])
}

func TestReplayDump_CountsFailuresAndContinues(t *testing.T) {
	dump := strings.Join([]string{
		"INSERT INTO t VALUES (1);",
		"INSERT INTO broken VALUES (2);",
		"INSERT INTO t VALUES (3);",
	}, "\n")

	result, err := replayDump(strings.NewReader(dump), func(stmt string) error {
		if strings.Contains(stmt, "broken") {
			return errors.New("table does not exist")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.ExecutedStatements)
	assert.Equal(t, 1, result.FailedStatements)
}

func TestReplayDump_EmptyStream(t *testing.T) {
	result, err := replayDump(strings.NewReader(""), func(stmt string) error {
		t.Fatalf("unexpected statement %q", stmt)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 0, result.ExecutedStatements)
	assert.Equal(t, 0, result.FailedStatements)
}
