package conversation

import "testing"

func TestClassifyGreetings(t *testing.T) {
	cases := []string{"oi", "Olá", "BOM DIA", "boa tarde", "boa noite", "Início", "quem fala", "oi, tudo bem?"}
	for _, text := range cases {
		intent := Classify(Normalize(text))
		if intent.Kind != IntentGreeting {
			t.Errorf("expected %q to classify as greeting, got %s", text, intent.Kind)
		}
	}
}

func TestClassifyGreetingRequiresWholeWord(t *testing.T) {
	// "oito" contains "oi" but is not a greeting.
	intent := Classify(Normalize("oito"))
	if intent.Kind != IntentOther {
		t.Fatalf("expected 'oito' to classify as other, got %s", intent.Kind)
	}
}

func TestClassifyMenuChoices(t *testing.T) {
	for i, text := range []string{"1", "2", "3", "4"} {
		intent := Classify(Normalize(text))
		if intent.Kind != IntentMenuChoice {
			t.Fatalf("expected %q to classify as menu choice, got %s", text, intent.Kind)
		}
		if intent.Choice != i+1 {
			t.Errorf("expected choice %d for %q, got %d", i+1, text, intent.Choice)
		}
	}

	if intent := Classify(Normalize("5")); intent.Kind != IntentOther {
		t.Errorf("expected '5' to classify as other, got %s", intent.Kind)
	}
	// The digit must stand alone as a word; "10" is not a choice.
	if intent := Classify(Normalize("10")); intent.Kind != IntentOther {
		t.Errorf("expected '10' to classify as other, got %s", intent.Kind)
	}
}

func TestClassifyDigitBeatsKeyword(t *testing.T) {
	cases := map[string]int{
		"1 trabalhista":        1,
		"2, quero um advogado": 2,
		"3 por favor":          3,
	}
	for text, choice := range cases {
		intent := Classify(Normalize(text))
		if intent.Kind != IntentMenuChoice || intent.Choice != choice {
			t.Errorf("%q: expected MENU_CHOICE(%d), got %+v", text, choice, intent)
		}
	}
}

func TestClassifyTopicsAccentInsensitive(t *testing.T) {
	cases := map[string]Topic{
		"FAMÍLIA":                        TopicFamily,
		"familia":                        TopicFamily,
		"Família":                        TopicFamily,
		"preciso de ajuda trabalhista":   TopicLabor,
		"processo civil":                 TopicCivil,
		"meu benefício do INSS foi negado": TopicSocialSecurity,
	}
	for text, topic := range cases {
		intent := Classify(Normalize(text))
		if intent.Kind != IntentTopic {
			t.Errorf("expected %q to classify as topic, got %s", text, intent.Kind)
			continue
		}
		if intent.Topic != topic {
			t.Errorf("expected topic %s for %q, got %s", topic, text, intent.Topic)
		}
	}
}

func TestClassifyFallsThroughToOther(t *testing.T) {
	intent := Classify(Normalize("quanto custa uma consulta?"))
	if intent.Kind != IntentOther {
		t.Fatalf("expected other, got %s", intent.Kind)
	}
}

func TestIsResume(t *testing.T) {
	for _, text := range []string{"menu", "Voltar", "  MENU  "} {
		if !IsResume(Normalize(text)) {
			t.Errorf("expected %q to be a resume keyword", text)
		}
	}
	for _, text := range []string{"voltar ao menu", "ok", ""} {
		if IsResume(Normalize(text)) {
			t.Errorf("expected %q not to be a resume keyword", text)
		}
	}
}

func TestNormalizeFoldsAccentsAndCase(t *testing.T) {
	if got := Normalize("  Início  "); got != "inicio" {
		t.Fatalf("expected 'inicio', got %q", got)
	}
	if got := Normalize("FAMÍLIA"); got != "familia" {
		t.Fatalf("expected 'familia', got %q", got)
	}
}
