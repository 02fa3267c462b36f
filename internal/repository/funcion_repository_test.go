package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/elescandalo/teatro-tickets/internal/model"
	"github.com/elescandalo/teatro-tickets/internal/repository"
)

const (
	lockFuncionSQL = `SELECT capacidad_total, estado FROM funciones WHERE id = \? FOR UPDATE`
	vendidosSQL    = `SELECT COALESCE\(SUM\(cantidad_tickets\), 0\) FROM invitados WHERE funcion_id = \?`
)

func sampleFuncion(capacidad int) *model.Funcion {
	return &model.Funcion{
		ID:             "f-1",
		ObraID:         "o-1",
		Nombre:         "Función de Gala",
		Fecha:          time.Date(2026, 4, 10, 20, 30, 0, 0, time.UTC),
		Ubicacion:      "Teatro Principal",
		CapacidadTotal: capacidad,
	}
}

// Shrinking capacity must take the same row lock registrations take, so
// the vendidos count cannot move between the check and the commit.
func TestFuncionUpdateLocksRowBeforeShrinkCheck(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(lockFuncionSQL).WithArgs("f-1").
		WillReturnRows(sqlmock.NewRows([]string{"capacidad_total", "estado"}).AddRow(10, model.EstadoActiva))
	mock.ExpectQuery(vendidosSQL).WithArgs("f-1").
		WillReturnRows(sqlmock.NewRows([]string{"vendidos"}).AddRow(10))
	mock.ExpectRollback()

	err = repository.NewFuncionRepo(db).Update(context.Background(), sampleFuncion(5))

	var cue *repository.CapacityInUseError
	require.ErrorAs(t, err, &cue)
	require.Equal(t, 10, cue.Vendidos)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFuncionUpdateCommitsWhenCapacityFits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(lockFuncionSQL).WithArgs("f-1").
		WillReturnRows(sqlmock.NewRows([]string{"capacidad_total", "estado"}).AddRow(10, model.EstadoActiva))
	mock.ExpectQuery(vendidosSQL).WithArgs("f-1").
		WillReturnRows(sqlmock.NewRows([]string{"vendidos"}).AddRow(7))
	mock.ExpectExec(`UPDATE funciones SET obra_id = \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = repository.NewFuncionRepo(db).Update(context.Background(), sampleFuncion(20))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFuncionUpdateUnknownFuncion(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(lockFuncionSQL).WithArgs("f-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err = repository.NewFuncionRepo(db).Update(context.Background(), sampleFuncion(20))
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
