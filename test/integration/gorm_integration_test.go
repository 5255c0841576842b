package integration

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"persona-forge-be/internal/constant"
	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/repository/contract"
	"persona-forge-be/internal/repository/specification"
	"persona-forge-be/internal/repository/unitofwork"
	"persona-forge-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.ScopeRepository())
	assert.NotNil(t, uow.ChunkRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check Document Repository", func(t *testing.T) {
		count, err := uow.DocumentRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Document count: %d", count)
	})

	t.Run("Check Chunk Repository", func(t *testing.T) {
		count, err := uow.ChunkRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Chunk count: %d", count)
	})

	t.Run("Transactional PersonaSet Create", func(t *testing.T) {
		ctx := context.Background()

		scope := &entity.Scope{
			Id:        uuid.New(),
			Name:      "integration-scope-" + uuid.New().String(),
			CreatedAt: time.Now(),
		}
		err := uow.ScopeRepository().Create(ctx, scope)
		assert.NoError(t, err)

		// Transaction Test: cycle assignment and the set with its personas
		// must land together.
		err = uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		cycle, err := uow.PersonaSetRepository().NextGenerationCycle(ctx, &scope.Id)
		assert.NoError(t, err)
		assert.Equal(t, 1, cycle)

		setId := uuid.New()
		set := &entity.PersonaSet{
			Id:              setId,
			ScopeId:         &scope.Id,
			GenerationCycle: cycle,
			Mode:            "both",
			Status:          constant.PersonaSetStatusGenerated,
			RequestedCount:  2,
			Personas: []entity.Persona{
				{
					Id:               uuid.New(),
					PersonaSetId:     setId,
					Name:             "Integration Ana",
					StructuredFields: map[string]interface{}{"name": "Integration Ana", "age": 34},
					CreatedAt:        time.Now(),
				},
				{
					Id:               uuid.New(),
					PersonaSetId:     setId,
					Name:             "Integration Ben",
					StructuredFields: map[string]interface{}{"name": "Integration Ben", "age": 51},
					CreatedAt:        time.Now(),
				},
			},
			CreatedAt: time.Now(),
		}
		err = uow.PersonaSetRepository().Create(ctx, set)
		assert.NoError(t, err)

		err = uow.Commit()
		assert.NoError(t, err)

		loaded, err := uow.PersonaSetRepository().FindOneWithPersonas(ctx, specification.ByID{ID: setId})
		assert.NoError(t, err)
		assert.NotNil(t, loaded)
		assert.Len(t, loaded.Personas, 2)

		t.Log("Successfully created PersonaSet with Personas in Transaction")
	})

	t.Run("Concurrent Cycle Allocation", func(t *testing.T) {
		ctx := context.Background()

		scope := &entity.Scope{
			Id:        uuid.New(),
			Name:      "integration-scope-" + uuid.New().String(),
			CreatedAt: time.Now(),
		}
		err := uow.ScopeRepository().Create(ctx, scope)
		assert.NoError(t, err)

		// Several generations racing on one scope must each claim a distinct
		// cycle; the allocation is serialized inside the creating transaction.
		const writers = 4
		cycles := make(chan int, writers)
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w := uowFactory.NewUnitOfWork(ctx)
				if err := w.Begin(ctx); err != nil {
					t.Errorf("Begin: %v", err)
					return
				}
				defer w.Rollback()

				cycle, err := w.PersonaSetRepository().NextGenerationCycle(ctx, &scope.Id)
				if err != nil {
					t.Errorf("NextGenerationCycle: %v", err)
					return
				}
				set := &entity.PersonaSet{
					Id:              uuid.New(),
					ScopeId:         &scope.Id,
					GenerationCycle: cycle,
					Mode:            "both",
					Status:          constant.PersonaSetStatusGenerated,
					RequestedCount:  1,
					CreatedAt:       time.Now(),
				}
				if err := w.PersonaSetRepository().Create(ctx, set); err != nil {
					t.Errorf("Create: %v", err)
					return
				}
				if err := w.Commit(); err != nil {
					t.Errorf("Commit: %v", err)
					return
				}
				cycles <- cycle
			}()
		}
		wg.Wait()
		close(cycles)

		seen := make(map[int]bool)
		for cycle := range cycles {
			assert.False(t, seen[cycle], "cycle %d allocated twice", cycle)
			seen[cycle] = true
		}
		assert.Len(t, seen, writers)
	})

	t.Run("Vector Search Round Trip", func(t *testing.T) {
		ctx := context.Background()

		doc := &entity.Document{
			Id:        uuid.New(),
			Type:      constant.DocumentTypeInterview,
			Filename:  "integration.txt",
			RawText:   "integration chunk text",
			Status:    constant.DocumentStatusReady,
			CreatedAt: time.Now(),
		}
		err := uow.DocumentRepository().Create(ctx, doc)
		assert.NoError(t, err)

		embedding := make([]float32, 768)
		embedding[0] = 1
		chunks := []*entity.Chunk{{
			Id:           uuid.New(),
			DocumentId:   doc.Id,
			ChunkIndex:   0,
			Text:         "integration chunk text",
			Embedding:    embedding,
			DocumentType: doc.Type,
			CreatedAt:    time.Now(),
		}}
		err = uow.ChunkRepository().ReplaceForDocument(ctx, doc.Id, chunks)
		assert.NoError(t, err)

		scored, err := uow.ChunkRepository().SearchSimilar(ctx, embedding, 1, contract.ChunkFilter{
			DocumentIDs: []uuid.UUID{doc.Id},
		})
		assert.NoError(t, err)
		if assert.Len(t, scored, 1) {
			assert.InDelta(t, 1.0, scored[0].Similarity, 1e-6)
		}

		// Cleanup
		assert.NoError(t, uow.ChunkRepository().DeleteByDocumentId(ctx, doc.Id))
		assert.NoError(t, uow.DocumentRepository().Delete(ctx, doc.Id))
	})
}
