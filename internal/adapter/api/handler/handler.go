package handler

import (
	"tsena/internal/usecase"
)

var (
	conversationHandler *ConversationHandler
	notificationHandler *NotificationHandler
	proposalHandler     *ProposalHandler
	favoriteHandler     *FavoriteHandler
	reportHandler       *ReportHandler
)

func Setup(
	chatUseCase *usecase.ChatUseCase,
	notificationUseCase *usecase.NotificationUseCase,
	proposalUseCase *usecase.ProposalUseCase,
	favoriteUseCase *usecase.FavoriteUseCase,
	reportUseCase *usecase.ReportUseCase,
) {
	conversationHandler = NewConversationHandler(chatUseCase)
	notificationHandler = NewNotificationHandler(notificationUseCase)
	proposalHandler = NewProposalHandler(proposalUseCase)
	favoriteHandler = NewFavoriteHandler(favoriteUseCase)
	reportHandler = NewReportHandler(reportUseCase)
}

func GetConversationHandler() *ConversationHandler {
	return conversationHandler
}

func GetNotificationHandler() *NotificationHandler {
	return notificationHandler
}

func GetProposalHandler() *ProposalHandler {
	return proposalHandler
}

func GetFavoriteHandler() *FavoriteHandler {
	return favoriteHandler
}

func GetReportHandler() *ReportHandler {
	return reportHandler
}
