package category

// ExpenseRules is checked top to bottom; earlier rules win ties, so
// "água" lands in Alimentação and "livro" in Lazer.
var ExpenseRules = []Rule{
	{Food, []string{
		"mercado", "alimentação", "supermercado", "hipermercado", "padaria", "açougue", "sacolão", "feira", "hortifruti",
		"restaurante", "lanchonete", "bar", "cafeteria", "delivery", "ifood", "ubereats", "rappi",
		"comida", "almoço", "jantar", "café", "chá", "lanche", "refeição", "marmita", "quentinha",
		"self-service", "buffet", "fast food", "mc donalds", "burguer king", "pizza", "pizzaria",
		"hamburguer", "hamburgueria", "pastel", "pastelaria", "sushi", "temaki", "japonês",
		"churrasco", "espetinho", "cerveja", "refrigerante", "suco", "água", "sorvete", "doceria",
		"sobremesa", "confeitaria", "snack", "petisco", "bolo", "biscoito", "bala", "chocolate",
	}},
	{Transport, []string{
		"uber", "99", "transporte", "táxi", "corrida", "app transporte", "ônibus", "metrô", "trem", "bilhete único",
		"passagem", "transporte público", "van", "fretado", "combustível", "gasolina", "etanol",
		"álcool", "diesel", "posto", "abastecimento", "estacionamento", "zona azul", "pedágio",
		"ipva", "licenciamento", "guincho", "oficina", "auto center", "lava rápido", "rodízio",
		"multas", "seguro veicular", "financiamento carro", "carro", "moto", "bicicleta", "bike",
		"patinete", "bicicletário", "translado", "aluguel de carro", "locadora", "manutenção carro",
	}},
	{Housing, []string{
		"aluguel", "moradia", "condomínio", "prestação", "parcela casa", "luz", "energia", "eletricidade", "água",
		"internet", "wi-fi", "telefone", "celular fixo", "gás", "ipt", "iptu", "manutenção", "reparo",
		"obra", "serviço doméstico", "faxina", "limpeza", "zelador", "porteiro", "portaria",
		"móveis", "mobília", "eletrodoméstico", "geladeira", "fogão", "máquina de lavar",
		"armário", "sofá", "decoração", "cortina", "tapete", "iluminação", "seguro residencial",
		"construção", "materiais de construção", "imobiliária", "financiamento",
	}},
	{Leisure, []string{
		"cinema", "lazer", "teatro", "show", "festival", "evento", "festa", "balada", "barzinho", "karaokê",
		"parque", "passeio", "viagem", "hotel", "pousada", "airbnb", "resort", "ingresso", "excursão",
		"turismo", "hobby", "jogo", "games", "videogame", "playstation", "xbox", "nintendo",
		"livro", "revista", "leitura", "quadrinhos", "música", "spotify", "streaming",
		"netflix", "prime video", "hbo max", "globo play", "disney+", "youtube premium", "podcast",
		"assinatura lazer", "diversão", "entretenimento",
	}},
	{Health, []string{
		"médico", "saúde", "consulta", "especialista", "exame", "checkup", "ultrassom", "raio-x", "tomografia",
		"psicólogo", "terapeuta", "terapia", "psi", "nutricionista", "personal trainer", "academia",
		"farmácia", "remédio", "medicamento", "genérico", "plano de saúde", "convênio médico",
		"coparticipação", "dentista", "ortodontia", "limpeza dental", "hospital", "clínica",
		"pronto socorro", "vacina", "injeção", "teste", "óculos", "ótica", "colírio",
		"fisioterapia", "pilates", "massagem", "quiropraxia", "acupuntura", "cirurgia",
	}},
	{Education, []string{
		"curso", "educação", "cursos", "curso online", "ead", "faculdade", "mensalidade", "matrícula", "inscrição",
		"pós-graduação", "mestrado", "doutorado", "universidade", "colégio", "escola", "creche",
		"livro", "apostila", "material escolar", "papelaria", "caneta", "caderno", "mochila",
		"plataforma de ensino", "ensino à distância", "alura", "udemy", "hotmart", "rocketseat",
		"idioma", "inglês", "espanhol", "francês", "aula particular", "professor", "reforço", "ensino",
	}},
	{Clothing, []string{
		"roupa", "vestuário", "camisa", "camiseta", "blusa", "calça", "shorts", "bermuda", "vestido", "saia",
		"casaco", "jaqueta", "moletom", "roupa íntima", "cueca", "calcinha", "sutiã", "pijama",
		"roupa de cama", "toalha", "chinelo", "sapato", "tênis", "sandália", "bota", "meia",
		"boné", "óculos", "óculos de sol", "relógio", "bolsa", "mochila", "cinto", "acessório",
		"joia", "bijuteria", "loja de roupa", "shopping", "outlet", "moda", "estilo", "roupa fitness",
	}},
}

// IncomeRules is the income-side keyword table, in priority order.
var IncomeRules = []Rule{
	{Salary, []string{"salário", "pagamento", "remuneração", "pro-labore"}},
	{Freelance, []string{"freelance", "freela", "trabalho", "serviço", "projeto", "contrato"}},
	{Investments, []string{"investimento", "renda", "dividendos", "juros", "aplicação"}},
	{Sales, []string{"venda", "vendas", "produto", "mercadoria", "item", "artigo"}},
	{Gifts, []string{"presente", "doação", "presentearam", "ganhei", "consegui"}},
	{Other, []string{"outros", "diversos", "miscelânea"}},
}
