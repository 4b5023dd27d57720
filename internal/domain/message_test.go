package domain

import "testing"

func TestAddReader_EmptyString(t *testing.T) {
	result, err := AddReader("", 5)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result != "[5]" {
		t.Errorf("Expected [5], got %s", result)
	}
}

func TestAddReader_AddToExisting(t *testing.T) {
	result, err := AddReader("[5]", 8)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	m := &Message{ReadBy: result}
	ids := m.ReadByIDs()
	if len(ids) != 2 || ids[0] != 5 || ids[1] != 8 {
		t.Errorf("Expected [5 8], got %v", ids)
	}
	if !m.IsReadBy(8) {
		t.Error("Expected message to be read by 8")
	}
}

func TestAddReader_PreventDuplicate(t *testing.T) {
	result, err := AddReader("[5,8]", 5)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result != "[5,8]" {
		t.Errorf("Expected unchanged [5,8], got %s", result)
	}
}

func TestAddReader_InvalidJSON(t *testing.T) {
	if _, err := AddReader("not-json", 1); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestConversationParticipants(t *testing.T) {
	c := &Conversation{BuyerID: 10, SellerID: 20, BuyerUnread: 2, SellerUnread: 0}

	if !c.IsParticipant(10) || !c.IsParticipant(20) || c.IsParticipant(30) {
		t.Error("Unexpected participant check result")
	}
	if c.OtherParticipant(10) != 20 || c.OtherParticipant(20) != 10 {
		t.Error("Unexpected other participant")
	}
	if c.UnreadFor(10) != 2 {
		t.Errorf("Expected buyer unread 2, got %d", c.UnreadFor(10))
	}
	if c.UnreadColumn(20) != "seller_unread" {
		t.Errorf("Expected seller_unread, got %s", c.UnreadColumn(20))
	}
}

func TestListingImageURLs(t *testing.T) {
	l := &Listing{}
	if len(l.ImageURLs()) != 0 {
		t.Error("Expected no images")
	}
	l.SetImageURLs([]string{"https://cdn/a.jpg", "https://cdn/b.jpg"})
	if got := l.ToListResponse().Thumbnail; got != "https://cdn/a.jpg" {
		t.Errorf("Expected first image as thumbnail, got %s", got)
	}
	if !Category("textbooks").IsValid() || Category("cars").IsValid() {
		t.Error("Unexpected category validation result")
	}
	if !Condition("like-new").IsValid() || Condition("like_new").IsValid() {
		t.Error("Unexpected condition validation result")
	}
}
