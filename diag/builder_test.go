package diag

import (
	"testing"

	"github.com/ssl-lang/ssl-lsp/location"
)

func TestNewIssue(t *testing.T) {
	issue := NewIssue(Error, E_SYNTAX, "test message").Build()

	if issue.Severity() != Error {
		t.Errorf("Severity() = %v; want Error", issue.Severity())
	}
	if issue.Code() != E_SYNTAX {
		t.Errorf("Code() = %v; want %v", issue.Code(), E_SYNTAX)
	}
	if issue.Message() != "test message" {
		t.Errorf("Message() = %q; want %q", issue.Message(), "test message")
	}
}

func TestNewIssue_PanicsOnInvalidSeverity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on invalid severity")
		}
	}()
	NewIssue(Severity(255), E_SYNTAX, "test")
}

func TestNewIssue_PanicsOnZeroCode(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on zero code")
		}
	}()
	NewIssue(Error, Code{}, "test")
}

func TestNewIssue_PanicsOnEmptyMessage(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on empty message")
		}
	}()
	NewIssue(Error, E_SYNTAX, "")
}

func TestIssueBuilder_WithSpan(t *testing.T) {
	source := location.MustNewSourceID("test://builder/a.ssl")
	span := location.Point(source, 3, 5)

	issue := NewIssue(Error, E_SYNTAX, "test").WithSpan(span).Build()

	if !issue.HasSpan() {
		t.Fatal("HasSpan() = false; want true")
	}
	if issue.Span() != span {
		t.Errorf("Span() = %+v; want %+v", issue.Span(), span)
	}
}

func TestIssueBuilder_WithHint(t *testing.T) {
	issue := NewIssue(Error, E_SYNTAX, "test").WithHint("check your syntax").Build()
	if issue.Hint() != "check your syntax" {
		t.Errorf("Hint() = %q; want %q", issue.Hint(), "check your syntax")
	}
}

func TestIssueBuilder_WithRelated(t *testing.T) {
	source := location.MustNewSourceID("test://builder/a.ssl")
	rel := location.RelatedInfo{Span: location.Point(source, 1, 1), Message: "previous declaration here"}

	issue := NewIssue(Error, E_DUPLICATE_PROCEDURE, "test").WithRelated(rel).Build()

	related := issue.Related()
	if len(related) != 1 {
		t.Fatalf("len(Related()) = %d; want 1", len(related))
	}
	if related[0].Message != "previous declaration here" {
		t.Errorf("Related()[0].Message = %q; want %q", related[0].Message, "previous declaration here")
	}
}

func TestIssueBuilder_WithDetail(t *testing.T) {
	issue := NewIssue(Error, E_SYNTAX, "test").WithDetail(DetailKeyExpected, "';'").Build()

	details := issue.Details()
	if len(details) != 1 {
		t.Fatalf("len(Details()) = %d; want 1", len(details))
	}
	if details[0].Key != DetailKeyExpected || details[0].Value != "';'" {
		t.Errorf("Details()[0] = %+v; want {%q %q}", details[0], DetailKeyExpected, "';'")
	}
}

func TestIssueBuilder_WithExpectedGot(t *testing.T) {
	issue := NewIssue(Error, E_SYNTAX, "test").WithExpectedGot("';'", "'begin'").Build()

	details := issue.Details()
	if len(details) != 2 {
		t.Fatalf("len(Details()) = %d; want 2", len(details))
	}
}

func TestFromIssue(t *testing.T) {
	original := NewIssue(Error, E_SYNTAX, "original").WithHint("a hint").Build()

	augmented := FromIssue(original).WithDetail(DetailKeyContext, "start").Build()

	if augmented.Message() != original.Message() {
		t.Errorf("augmented message = %q; want %q", augmented.Message(), original.Message())
	}
	if augmented.Hint() != original.Hint() {
		t.Errorf("augmented hint = %q; want %q", augmented.Hint(), original.Hint())
	}
	if len(augmented.Details()) != 1 {
		t.Errorf("len(augmented.Details()) = %d; want 1", len(augmented.Details()))
	}
	if len(original.Details()) != 0 {
		t.Error("FromIssue mutated the original issue")
	}
}

func TestFromIssue_PanicsOnZeroIssue(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on zero-value Issue")
		}
	}()
	FromIssue(Issue{})
}

func TestIssueBuilder_BuildIsIndependentOfSubsequentMutation(t *testing.T) {
	builder := NewIssue(Error, E_SYNTAX, "test").WithDetail("a", "1")
	first := builder.Build()

	builder.WithDetail("b", "2")
	second := builder.Build()

	if len(first.Details()) != 1 {
		t.Errorf("first.Details() mutated by later builder calls: len = %d", len(first.Details()))
	}
	if len(second.Details()) != 2 {
		t.Errorf("len(second.Details()) = %d; want 2", len(second.Details()))
	}
}

func TestIssueBuilder_Validity(t *testing.T) {
	for _, sev := range []Severity{Error, Warning, Info, Hint} {
		issue := NewIssue(sev, E_SYNTAX, "test").Build()
		if !issue.IsValid() {
			t.Errorf("issue with severity %v is not valid", sev)
		}
	}
}
