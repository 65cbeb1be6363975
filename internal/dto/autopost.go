package dto

// PostSourceDocumentRequest identifies the document an adapter should post.
type PostSourceDocumentRequest struct {
	DocumentID string `json:"documentID" binding:"required"`
}

// AutoPostResponse lists the entries committed for one business event.
type AutoPostResponse struct {
	Entries []JournalEntryResponse `json:"entries"`
}
