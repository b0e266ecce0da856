package database

import (
	"context"
	"errors"

	"github.com/datahub/backend/internal/models"
	"github.com/datahub/backend/internal/store"
	"github.com/datahub/backend/pkg/logger"
	"github.com/datahub/backend/pkg/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const seedPassword = "password"

type seedFile struct {
	owner       string
	filename    string
	description string
	tags        []string
}

type seedCollection struct {
	owner string
	name  string
	files []string
}

var (
	seedUsers = []string{"alice", "bob", "carol"}
	seedTags  = []string{"finance", "health", "personal", "data"}

	seedFiles = []seedFile{
		{owner: "alice", filename: "q3_report.pdf", description: "Q3 financials", tags: []string{"finance", "data"}},
		{owner: "bob", filename: "insurance.txt", description: "Health insurance notes", tags: []string{"health", "personal"}},
		{owner: "carol", filename: "resume.docx", description: "Updated CV", tags: []string{"personal"}},
	}

	seedCollections = []seedCollection{
		{owner: "alice", name: "Team Finance", files: []string{"q3_report.pdf"}},
		{owner: "bob", name: "Personal Docs", files: []string{"insurance.txt", "resume.docx"}},
		{owner: "carol", name: "Data Room", files: []string{"q3_report.pdf", "insurance.txt"}},
	}
)

// SeedResult counts the rows a Seed call created.
type SeedResult struct {
	Users       int
	Tags        int
	Files       int
	Collections int
}

// Seed installs the demo data set. Rows that already exist are reused, so
// running it twice changes nothing.
func Seed(ctx context.Context, db *gorm.DB) (*SeedResult, error) {
	result := &SeedResult{}
	tags := store.NewTagRegistry()
	links := store.NewTagLinkStore(tags)
	members := store.NewMembershipStore()

	err := store.NewTransactor(db).Execute(ctx, func(uow *store.UnitOfWork) error {
		users := map[string]models.User{}
		for _, username := range seedUsers {
			user, created, err := seedUser(uow, username)
			if err != nil {
				return err
			}
			if created {
				result.Users++
			}
			users[username] = *user
		}

		for _, name := range seedTags {
			_, created, err := tags.GetOrCreate(uow, name)
			if err != nil {
				return err
			}
			if created {
				result.Tags++
			}
		}

		files := map[string]models.File{}
		for _, entry := range seedFiles {
			owner := users[entry.owner]
			var file models.File
			err := uow.DB.Where("filename = ? AND user_id = ?", entry.filename, owner.ID).First(&file).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				description := entry.description
				file = models.File{Filename: entry.filename, Description: &description, UserID: owner.ID}
				if err := uow.DB.Omit(clause.Associations).Create(&file).Error; err != nil {
					return err
				}
				entries := make([]store.TagEntry, 0, len(entry.tags))
				for _, name := range entry.tags {
					ownerID := owner.ID
					entries = append(entries, store.TagEntry{Name: name, AddedBy: &ownerID})
				}
				if err := links.AttachEntries(uow, file.ID, entries); err != nil {
					return err
				}
				result.Files++
			} else if err != nil {
				return err
			}
			files[entry.filename] = file
		}

		for _, entry := range seedCollections {
			owner := users[entry.owner]
			var collection models.Collection
			err := uow.DB.Where("name = ? AND user_id = ?", entry.name, owner.ID).First(&collection).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			collection = models.Collection{Name: entry.name, UserID: owner.ID}
			if err := uow.DB.Omit(clause.Associations).Create(&collection).Error; err != nil {
				return err
			}
			memberFiles := make([]models.File, 0, len(entry.files))
			for _, filename := range entry.files {
				memberFiles = append(memberFiles, files[filename])
			}
			if err := members.AddMembers(uow, collection.ID, memberFiles); err != nil {
				return err
			}
			result.Collections++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("database_seeded", map[string]interface{}{
		"users":       result.Users,
		"tags":        result.Tags,
		"files":       result.Files,
		"collections": result.Collections,
	})
	return result, nil
}

func seedUser(uow *store.UnitOfWork, username string) (*models.User, bool, error) {
	var user models.User
	err := uow.DB.Where("username = ?", username).First(&user).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	hash, err := utils.HashPassword(seedPassword)
	if err != nil {
		return nil, false, err
	}
	user = models.User{Username: username, PasswordHash: hash}
	if err := uow.DB.Omit(clause.Associations).Create(&user).Error; err != nil {
		return nil, false, err
	}
	return &user, true, nil
}
