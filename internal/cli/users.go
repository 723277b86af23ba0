package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nightstay/backend-go/internal/database/models"
)

// UsersCmd lists registered accounts
type UsersCmd struct{}

func (c *UsersCmd) Run(ctx *Context) error {
	auth, err := ctx.OpenAuth()
	if err != nil {
		return err
	}

	users, err := auth.ListUsers(context.Background())
	if err != nil {
		return err
	}

	if len(users) == 0 {
		fmt.Fprintln(ctx.out(), mutedStyle.Render("No users found"))
		return nil
	}

	fmt.Fprintln(ctx.out(), renderUsers(users))
	return nil
}

func renderUsers(users []models.User) string {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(u.ID), 10),
			u.Email,
			u.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("ID", "EMAIL", "CREATED").
		Rows(rows...).
		String()
}
