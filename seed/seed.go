// Package seed populates the database with groups and optional demo content.
package seed

import (
	"fmt"

	"yatube/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Groups creates the fixed set of communities. Safe to run repeatedly: rows
// are matched by slug and left untouched when present.
func Groups(db *gorm.DB) error {
	groups := []models.Group{
		{Title: "Путешествия", Slug: "travel", Description: "Записки путешественников"},
		{Title: "Кулинария", Slug: "cooking", Description: "Рецепты и кухонные истории"},
		{Title: "Технологии", Slug: "tech", Description: "Обо всём, что с проводами и без"},
		{Title: "Литература", Slug: "books", Description: "Обсуждение прочитанного"},
	}

	for _, g := range groups {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).Create(&g).Error
		if err != nil {
			return fmt.Errorf("seed group %q: %w", g.Slug, err)
		}
	}
	return nil
}

// Demo fills the database with generated users, posts, comments and follows.
func Demo(db *gorm.DB, numUsers, numPosts int) error {
	gofakeit.Seed(0)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user := &models.User{
			Username: fmt.Sprintf("%s_%d", gofakeit.Username(), i),
			Email:    fmt.Sprintf("user%d@%s", i, gofakeit.DomainName()),
			Password: string(hash),
			Bio:      gofakeit.Sentence(8),
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}

	var groups []models.Group
	if err := db.Find(&groups).Error; err != nil {
		return err
	}

	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := users[gofakeit.Number(0, len(users)-1)]
		post := &models.Post{
			Text:     gofakeit.Paragraph(1, 3, 12, " "),
			AuthorID: author.ID,
		}
		if len(groups) > 0 && gofakeit.Bool() {
			post.GroupID = &groups[gofakeit.Number(0, len(groups)-1)].ID
		}
		if err := db.Create(post).Error; err != nil {
			return fmt.Errorf("seed post: %w", err)
		}
		posts = append(posts, post)
	}

	for _, post := range posts {
		for i := 0; i < gofakeit.Number(0, 4); i++ {
			comment := &models.Comment{
				Text:     gofakeit.Sentence(10),
				AuthorID: users[gofakeit.Number(0, len(users)-1)].ID,
				PostID:   post.ID,
			}
			if err := db.Create(comment).Error; err != nil {
				return fmt.Errorf("seed comment: %w", err)
			}
		}
	}

	// Random follow edges; duplicates and self-follows are skipped by the
	// store constraints.
	for i := 0; i < numUsers*3; i++ {
		follower := users[gofakeit.Number(0, len(users)-1)]
		followed := users[gofakeit.Number(0, len(users)-1)]
		if follower.ID == followed.ID {
			continue
		}
		follow := &models.Follow{UserID: follower.ID, FollowingID: followed.ID}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(follow).Error; err != nil {
			return fmt.Errorf("seed follow: %w", err)
		}
	}

	return nil
}
