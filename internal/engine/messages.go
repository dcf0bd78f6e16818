package engine

import "feedloader/internal/domain"

// Messages - тексты терминальных состояний для одного типа ленты.
type Messages struct {
	Empty string
	End   string
}

// ErrorMessage показывается при любой ошибке загрузки, независимо от типа ленты.
const ErrorMessage = "Something went wrong. Please try again later."

var messagesByKind = map[domain.Kind]Messages{
	domain.KindFeed:   {Empty: "No stories to show yet.", End: "You have reached the end of the feed."},
	domain.KindUser:   {Empty: "This user has not published anything yet.", End: "No more stories from this user."},
	domain.KindSearch: {Empty: "Nothing matched your search.", End: "No more results."},
	domain.KindTopic:  {Empty: "No topics to show yet.", End: "No more topics."},
	domain.KindPost:   {Empty: "No posts yet.", End: "No more posts."},
	domain.KindReply:  {Empty: "No replies yet. Be the first to reply.", End: "No more replies."},
	domain.KindPeople: {Empty: "No people to recommend right now.", End: "No more people to show."},
}

// MessagesFor возвращает тексты для kind; неизвестные типы получают тексты ленты.
func MessagesFor(kind domain.Kind) Messages {
	if m, ok := messagesByKind[kind]; ok {
		return m
	}
	return messagesByKind[domain.KindFeed]
}
