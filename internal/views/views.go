package views

import (
	"context"

	"market-chat-service/internal/models"
	"market-chat-service/internal/repositories"
)

// Builder assembles wire views by resolving account and statement summaries
// through the store collaborators.
type Builder struct {
	accounts   repositories.AccountRepository
	statements repositories.StatementRepository
}

// NewBuilder constructs a Builder.
func NewBuilder(accounts repositories.AccountRepository, statements repositories.StatementRepository) *Builder {
	return &Builder{accounts: accounts, statements: statements}
}

// MessageView resolves the sender, recipient and optional linked statement
// for one message.
func (b *Builder) MessageView(ctx context.Context, msg models.Message) (models.MessageView, error) {
	views, err := b.MessageViews(ctx, []models.Message{msg})
	if err != nil {
		return models.MessageView{}, err
	}
	return views[0], nil
}

// MessageViews resolves summaries for a batch of messages, fetching each
// referenced account and statement once.
func (b *Builder) MessageViews(ctx context.Context, msgs []models.Message) ([]models.MessageView, error) {
	accounts := map[string]models.AccountSummary{}
	statements := map[string]*models.StatementSummary{}

	lookupAccount := func(id string) (models.AccountSummary, error) {
		if summary, ok := accounts[id]; ok {
			return summary, nil
		}
		account, err := b.accounts.Get(ctx, id)
		if err != nil {
			return models.AccountSummary{}, err
		}
		summary := account.Summary()
		accounts[id] = summary
		return summary, nil
	}

	views := make([]models.MessageView, 0, len(msgs))
	for _, msg := range msgs {
		from, err := lookupAccount(msg.FromAccount)
		if err != nil {
			return nil, err
		}
		to, err := lookupAccount(msg.ToAccount)
		if err != nil {
			return nil, err
		}

		var statement *models.StatementSummary
		if msg.StatementID.Valid {
			id := msg.StatementID.String
			if cached, ok := statements[id]; ok {
				statement = cached
			} else {
				st, err := b.statements.Get(ctx, id)
				if err != nil {
					return nil, err
				}
				summary := st.Summary()
				statement = &summary
				statements[id] = statement
			}
		}

		views = append(views, models.MessageView{
			ID:           msg.ID,
			Conversation: msg.Conversation,
			FromUser:     from,
			ToUser:       to,
			Content:      msg.Content,
			Timestamp:    msg.CreatedAt,
			Read:         msg.Read,
			Statement:    statement,
		})
	}
	return views, nil
}
