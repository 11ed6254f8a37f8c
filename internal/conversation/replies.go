package conversation

import "fmt"

// Outbound reply texts. Wording follows the office's WhatsApp channel.

const replyMenu = `👋 Olá, bem-vindo ao escritório de advocacia!

Como podemos ajudar?

1️⃣ Agendar Consulta
2️⃣ Falar com Advogado
3️⃣ Serviços
4️⃣ Outros assuntos`

const replyAskName = "📅 Vamos agendar sua consulta!\n\nQual é o seu *nome*?"

const replyAskPhone = "📞 Agora informe seu *telefone* (com DDD):"

const replyAskSchedule = "📆 Por fim, qual é a *melhor data e horário* para a consulta?"

const replyHandoff = "⚖️ Aguardando... Em instantes um advogado falará com você!\n\n" +
	"Digite *menu* ou *voltar* para retomar o atendimento automático."

const replyResumed = "🤖 Atendimento automático retomado.\n\n" + replyMenu

const replyServices = `📚 Serviços:
- Direito Trabalhista
- Direito de Família
- Direito Civil
- Ações contra INSS`

const replyLeaveMessage = "📩 Digite sua mensagem e nossa equipe entrará em contato."

const replyFallback = "🤖 Obrigado pelo contato, retornaremos o mais breve possível."

var topicReplies = map[Topic]string{
	TopicLabor:          "🛠️ Direito Trabalhista:\nTratamos de questões como demissões, verbas rescisórias e outros direitos do trabalhador.",
	TopicFamily:         "👨‍👩‍👧 Direito de Família:\nDivórcios, pensões, guarda de filhos e outros assuntos relacionados à família.",
	TopicCivil:          "🏛️ Direito Civil:\nAssuntos como contratos, imóveis, indenizações e mais.",
	TopicSocialSecurity: "📄 Ações contra o INSS:\nAposentadorias, auxílios e revisões de benefícios negados.",
}

func replyConfirmation(name, phone, schedule string) string {
	return fmt.Sprintf(`✅ Obrigado, %s!
Recebemos seus dados:

📞 Telefone: %s
📅 Data/Horário: %s

Entraremos em contato para confirmar a consulta.`, name, phone, schedule)
}
