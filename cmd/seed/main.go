package main

import (
	"log"
	"os"

	"persona-forge-be/internal/constant"
	"persona-forge-be/internal/model"
	"persona-forge-be/pkg/database"
	"persona-forge-be/pkg/textsplit"

	"github.com/joho/godotenv"
)

// Seeds a demo research scope with one context document and two interview
// transcripts. Documents land in pending state; the running server picks them
// up for chunking once they are re-queued through the API, or an operator can
// POST them again through /api/document/v1.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding demo research scope...")

	var existing model.Scope
	if err := db.Where("name = ?", demoScopeName).First(&existing).Error; err == nil {
		log.Printf("Scope '%s' already exists, skipping...", demoScopeName)
		return
	}

	scope := model.Scope{
		Name:          demoScopeName,
		FieldOfStudy:  "Product research",
		CoreObjective: "Understand how small accounting firms adopt cloud bookkeeping tools",
	}
	if err := db.Create(&scope).Error; err != nil {
		log.Fatalf("Error: Failed to create scope: %v", err)
	}

	documents := []model.Document{
		{
			ScopeId:    &scope.Id,
			Type:       constant.DocumentTypeContext,
			Filename:   "market_overview.md",
			RawText:    demoContext,
			TokenCount: textsplit.EstimateTokens(demoContext),
			Status:     constant.DocumentStatusPending,
		},
		{
			ScopeId:    &scope.Id,
			Type:       constant.DocumentTypeInterview,
			Filename:   "interview_owner.txt",
			RawText:    demoInterviewOwner,
			TokenCount: textsplit.EstimateTokens(demoInterviewOwner),
			Status:     constant.DocumentStatusPending,
		},
		{
			ScopeId:    &scope.Id,
			Type:       constant.DocumentTypeInterview,
			Filename:   "interview_bookkeeper.txt",
			RawText:    demoInterviewBookkeeper,
			TokenCount: textsplit.EstimateTokens(demoInterviewBookkeeper),
			Status:     constant.DocumentStatusPending,
		},
	}

	for _, d := range documents {
		if err := db.Create(&d).Error; err != nil {
			log.Fatalf("Error: Failed to create document %s: %v", d.Filename, err)
		}
		log.Printf("Seeded document: %s (%s)", d.Filename, d.Type)
	}

	log.Printf("✅ Success: Seeded scope %s with %d documents.", scope.Id, len(documents))
}

const demoScopeName = "Cloud Bookkeeping Adoption"

const demoContext = `Small accounting firms in the 2-15 employee range are migrating from
desktop bookkeeping suites to cloud products. The main drivers are client
pressure for shared access, bank feed automation, and compliance deadlines.
The main blockers are data migration anxiety, per-seat pricing, and partner
reluctance to retrain senior staff. Firms that adopted cloud tools report the
transition took one to two quarters, with most friction concentrated in the
first month of parallel running.`

const demoInterviewOwner = `Interviewer: What made you consider switching?
Owner: Honestly, clients kept asking why they couldn't just see their numbers.
We were emailing PDF reports every month. The day a client threatened to leave
over it, I started trialing cloud products.
Interviewer: What almost stopped you?
Owner: Migration. Fifteen years of ledgers. I did not trust an importer with
that. We ran both systems side by side for a full quarter before I relaxed.
Interviewer: And the team?
Owner: My senior bookkeeper hated it for the first month. Now she says she
would quit if we went back. The bank feeds alone save her a day a week.`

const demoInterviewBookkeeper = `Interviewer: How did the switch feel day to day?
Bookkeeper: The first weeks were rough. Everything I could do blind in the old
system took three clicks somewhere new. What won me over was reconciliation.
Bank feeds pull in overnight, and the matching suggestions are right most of
the time. Month-end went from a week of late evenings to two days.
Interviewer: Anything you still miss?
Bookkeeper: Keyboard shortcuts. And working on the train, offline mode is
still not really there. But I would not go back. The clients fix their own
invoice typos now instead of phoning me.`
