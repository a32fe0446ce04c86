package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"freelance-backend/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Querier is the set of store operations available both inside and outside a transaction.
type Querier interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	LockUser(ctx context.Context, id uuid.UUID) error
	DeleteUser(ctx context.Context, id uuid.UUID) error

	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetProjectForUpdate(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListProjects(ctx context.Context, search string) ([]models.Project, error)
	ListProjectsByClient(ctx context.Context, clientID uuid.UUID) ([]models.Project, error)
	ListProjectsWonBy(ctx context.Context, freelancerID uuid.UUID) ([]models.Project, error)
	UpdateProjectDetails(ctx context.Context, project *models.Project) error
	UpdateProjectState(ctx context.Context, project *models.Project) error
	SetWinningBid(ctx context.Context, projectID uuid.UUID, bidID uuid.NullUUID) error
	DeleteProject(ctx context.Context, id uuid.UUID) error

	CreateBid(ctx context.Context, bid *models.Bid) error
	GetBid(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	ListBidsForProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error)
	ListBidsByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Bid, error)
	HasBid(ctx context.Context, projectID, freelancerID uuid.UUID) (bool, error)
	DeleteBid(ctx context.Context, id uuid.UUID) error

	GetProfile(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error)
	UpsertProfileSkills(ctx context.Context, userID uuid.UUID, skills string) error
	SaveProfileRating(ctx context.Context, userID uuid.UUID, rating decimal.Decimal, totalProjects int) error
	ListCompletedRatings(ctx context.Context, freelancerID uuid.UUID) ([]int, error)

	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetPaymentByIntentID(ctx context.Context, intentID string) (*models.Payment, error)
	ListPaymentsByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error)
	SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string) error
	TransitionPaymentStatus(ctx context.Context, id uuid.UUID, from, to models.PaymentStatus) (bool, error)
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Queries implements Querier on top of a connection or a transaction.
type Queries struct {
	db dbtx
}

type DatabaseClient struct {
	*Queries
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewDatabaseClientFromDB(db), nil
}

// NewDatabaseClientFromDB wraps an already opened handle.
func NewDatabaseClientFromDB(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{Queries: &Queries{db: db}, db: db}
}

// InTx runs fn inside a read-committed transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
func (d *DatabaseClient) InTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := d.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&Queries{db: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapError(err))
	}
	return nil
}

// DB returns the underlying handle, used by the migrator.
func (d *DatabaseClient) DB() *sql.DB {
	return d.db
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
